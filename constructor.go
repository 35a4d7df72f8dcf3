package digo

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// Dependency is one constructor argument as seen by the container.
type Dependency struct {
	// Contract is the type used to look up registrations.
	Contract reflect.Type
	// Multi is set for []Contract and variadic parameters, which receive
	// every matching instance (possibly none).
	Multi bool
}

// constructor holds the metadata of a registered constructor function.
type constructor struct {
	fn       reflect.Value
	out      reflect.Type
	params   []reflect.Type
	deps     []Dependency
	variadic bool
	hasErr   bool
}

// newConstructor validates fn, which must have the signature
// func(deps...) T or func(deps...) (T, error) with a concrete T.
func newConstructor(fn any) (*constructor, error) {
	if fn == nil {
		return nil, &InvalidConstructorError{Type: "<nil>", Reason: "constructor cannot be nil"}
	}

	val := reflect.ValueOf(fn)
	typ := val.Type()
	if typ.Kind() != reflect.Func {
		return nil, &InvalidConstructorError{Type: typ.String(), Reason: "constructor must be a function"}
	}
	if val.IsNil() {
		return nil, &InvalidConstructorError{Type: typ.String(), Reason: "constructor cannot be nil"}
	}

	switch typ.NumOut() {
	case 1:
	case 2:
		if !typ.Out(1).Implements(errorType) {
			return nil, &InvalidConstructorError{Type: typ.String(), Reason: "second return value must implement error"}
		}
	default:
		return nil, &InvalidConstructorError{Type: typ.String(), Reason: "constructor must return (T) or (T, error)"}
	}

	out := typ.Out(0)
	if out.Kind() == reflect.Interface {
		return nil, &InvalidConstructorError{
			Type:   typ.String(),
			Reason: fmt.Sprintf("constructor must return a concrete type, not the interface %s", out),
		}
	}

	c := &constructor{
		fn:       val,
		out:      out,
		params:   make([]reflect.Type, typ.NumIn()),
		deps:     make([]Dependency, typ.NumIn()),
		variadic: typ.IsVariadic(),
		hasErr:   typ.NumOut() == 2,
	}
	for i := range c.params {
		p := typ.In(i)
		c.params[i] = p
		if p.Kind() == reflect.Slice {
			c.deps[i] = Dependency{Contract: p.Elem(), Multi: true}
			continue
		}
		c.deps[i] = Dependency{Contract: p}
	}

	return c, nil
}

// dependencies returns the ordered dependency declaration of the constructor.
func (c *constructor) dependencies() []Dependency {
	out := make([]Dependency, len(c.deps))
	copy(out, c.deps)
	return out
}

// call invokes the constructor with fully resolved arguments. Multi
// arguments must already be slices.
func (c *constructor) call(args []reflect.Value) (any, error) {
	var results []reflect.Value
	if c.variadic {
		results = c.fn.CallSlice(args)
	} else {
		results = c.fn.Call(args)
	}

	if c.hasErr && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}
