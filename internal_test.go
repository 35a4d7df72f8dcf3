package digo

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair[A, B any] struct{}

type single[T any] struct{}

func TestCountTypeArgs(t *testing.T) {
	tests := []struct {
		list string
		want int
	}{
		{"", 0},
		{"int", 1},
		{"int,string", 2},
		{"map[string]int", 1},
		{"map[string]int,func(int, string) error", 2},
		{"struct { A int; B string },[]int", 2},
		{"github.com/centraunit/digo/mock.User", 1},
	}
	for _, tt := range tests {
		t.Run(tt.list, func(t *testing.T) {
			assert.Equal(t, tt.want, countTypeArgs(tt.list))
		})
	}
}

func TestGenericTypeOf(t *testing.T) {
	g, arity := genericTypeOf(reflect.TypeFor[*single[map[string]int]]())
	assert.Equal(t, 1, arity)
	assert.Equal(t, GenericType{PkgPath: "github.com/centraunit/digo", Name: "single", Pointer: true}, g)
	assert.Equal(t, "*github.com/centraunit/digo.single[T]", g.String())

	_, arity = genericTypeOf(reflect.TypeFor[pair[int, string]]())
	assert.Equal(t, 2, arity)

	_, arity = genericTypeOf(reflect.TypeFor[int]())
	assert.Equal(t, 0, arity)

	_, arity = genericTypeOf(reflect.TypeFor[[]single[int]]())
	assert.Equal(t, 0, arity, "unnamed types are not generic")

	_, arity = genericTypeOf(nil)
	assert.Equal(t, 0, arity)
}

func TestTypeArgsOf(t *testing.T) {
	assert.Equal(t, "int", typeArgsOf(reflect.TypeFor[*single[int]]()))
	assert.Equal(t, "github.com/centraunit/digo.pair[int,string]", typeArgsOf(reflect.TypeFor[single[pair[int, string]]]()))
	assert.Equal(t, "", typeArgsOf(reflect.TypeFor[int]()))
	assert.Equal(t, "", typeArgsOf(nil))

	c := Close[pair[int, string]](func() *single[pair[int, string]] { return nil })
	assert.Equal(t, typeArgsOf(reflect.TypeFor[single[pair[int, string]]]()), c.args)
}

func TestInstanceStore_AtMostOneInstance(t *testing.T) {
	store := newInstanceStore()
	typ := reflect.TypeFor[*single[int]]()

	require.NoError(t, store.add(ScopeScoped, typ, &single[int]{}, true))
	assert.Error(t, store.add(ScopeScoped, typ, &single[int]{}, true))
	require.NoError(t, store.add(ScopeSingleton, typ, &single[int]{}, false))

	assert.Equal(t, 2, store.len())
	assert.Len(t, store.owned, 1)

	_, ok := store.get(ScopeTransient, typ)
	assert.False(t, ok)
	_, ok = store.get(ScopeScoped, typ)
	assert.True(t, ok)
}

func TestScope_Ranks(t *testing.T) {
	assert.Less(t, ScopeTransient.rank(), ScopeScoped.rank())
	assert.Less(t, ScopeScoped.rank(), ScopeSingleton.rank())
	assert.False(t, ScopeTransient.cached())
	assert.True(t, ScopeScoped.cached())
	assert.True(t, ScopeSingleton.cached())
	assert.False(t, Scope("request").valid())
}

func TestConstructor(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("Dependencies", func(t *testing.T) {
		c, err := newConstructor(func(a int, bs []string, cs ...error) *single[int] { return nil })
		require.NoError(t, err)
		assert.Equal(t, []Dependency{
			{Contract: reflect.TypeFor[int]()},
			{Contract: reflect.TypeFor[string](), Multi: true},
			{Contract: reflect.TypeFor[error](), Multi: true},
		}, c.dependencies())
		assert.True(t, c.variadic)
	})

	t.Run("Error", func(t *testing.T) {
		c, err := newConstructor(func() (*single[int], error) { return nil, errBoom })
		require.NoError(t, err)
		_, err = c.call(nil)
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("Value", func(t *testing.T) {
		c, err := newConstructor(func(n int) single[int] { return single[int]{} })
		require.NoError(t, err)
		got, err := c.call([]reflect.Value{reflect.ValueOf(1)})
		require.NoError(t, err)
		assert.Equal(t, single[int]{}, got)
	})
}

func TestTypeRegistration_ConstructorFor(t *testing.T) {
	reg, err := NewGenericRegistration(ScopeScoped, nil,
		Close[int](func() *single[int] { return &single[int]{} }),
		Close[string](func() *single[string] { return &single[string]{} }))
	require.NoError(t, err)

	_, ok := reg.constructorFor(reflect.TypeFor[*single[string]]())
	assert.True(t, ok)
	_, ok = reg.constructorFor(reflect.TypeFor[*single[bool]]())
	assert.False(t, ok)
}
