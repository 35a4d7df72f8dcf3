package digo

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// GenericType identifies an open generic type, which has no reflect.Type of
// its own, by the package and name it was declared with.
type GenericType struct {
	PkgPath string
	Name    string
	Pointer bool
}

func (g GenericType) String() string {
	prefix := ""
	if g.Pointer {
		prefix = "*"
	}
	return prefix + g.PkgPath + "." + g.Name + "[T]"
}

// genericTypeOf returns the open generic type t was instantiated from and
// the number of its type arguments. Non-generic types have arity 0.
func genericTypeOf(t reflect.Type) (GenericType, int) {
	if t == nil {
		return GenericType{}, 0
	}

	pointer := false
	if t.Kind() == reflect.Pointer {
		pointer = true
		t = t.Elem()
	}

	name, args, ok := splitTypeArgs(t.Name())
	if !ok {
		return GenericType{}, 0
	}

	g := GenericType{PkgPath: t.PkgPath(), Name: name, Pointer: pointer}
	return g, countTypeArgs(args)
}

// typeArgsOf returns the type argument list of the instantiated generic
// type t, or of the type t points to, as the runtime spells it.
func typeArgsOf(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	_, args, _ := splitTypeArgs(t.Name())
	return args
}

// splitTypeArgs splits "Name[args]" into its name and argument list.
func splitTypeArgs(name string) (string, string, bool) {
	open := strings.IndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return "", "", false
	}
	return name[:open], name[open+1 : len(name)-1], true
}

// countTypeArgs counts the top-level entries of a type argument list such
// as "int,map[string]int,func(a, b)".
func countTypeArgs(list string) int {
	if strings.TrimSpace(list) == "" {
		return 0
	}
	depth, n := 0, 1
	for _, r := range list {
		switch r {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				n++
			}
		}
	}
	return n
}

// Closing is one compile-time instantiation of an open generic injectable,
// created with Close.
type Closing struct {
	arg  reflect.Type
	// args is arg spelled the way it appears in instantiated type names,
	// which qualify named types with their full package path.
	args string
	fn   any
	ctor *constructor
}

// typeArg carries a type argument into an instantiated type name.
type typeArg[T any] struct{}

// Close declares fn, a constructor of the generic injectable instantiated
// with A, as the closing used whenever a contract needs the type argument A:
//
//	digo.Close[User](NewMemoryRepository[User])
func Close[A any](fn any) Closing {
	return Closing{
		arg:  reflect.TypeFor[A](),
		args: typeArgsOf(reflect.TypeFor[typeArg[A]]()),
		fn:   fn,
	}
}

// Arg returns the type argument of the closing.
func (c Closing) Arg() reflect.Type {
	return c.arg
}

// genericDefinition is the open generic part of a TypeRegistration.
type genericDefinition struct {
	origin    GenericType
	contracts []GenericType
	closings  []Closing
}

func newGenericDefinition(contracts []reflect.Type, closings []Closing) (*genericDefinition, error) {
	if len(closings) == 0 {
		return nil, &RegistrationError{Type: "<generic>", Reason: "at least one closing is required"}
	}

	def := &genericDefinition{}
	for _, contract := range contracts {
		if contract == nil {
			return nil, &RegistrationError{Type: "<generic>", Reason: "contract cannot be nil"}
		}
		family, arity := genericTypeOf(contract)
		if arity != 1 {
			return nil, &GenericArityError{Type: contract.String(), Arity: arity}
		}
		def.contracts = append(def.contracts, family)
	}

	seen := make(map[reflect.Type]bool, len(closings))
	for i, c := range closings {
		ctor, err := newConstructor(c.fn)
		if err != nil {
			return nil, err
		}
		origin, arity := genericTypeOf(ctor.out)
		if arity != 1 {
			return nil, &GenericArityError{Type: ctor.out.String(), Arity: arity}
		}
		if i == 0 {
			def.origin = origin
		} else if origin != def.origin {
			return nil, &RegistrationError{
				Type:   ctor.out.String(),
				Reason: fmt.Sprintf("closing does not instantiate %s", def.origin),
			}
		}
		if c.arg == nil {
			return nil, &RegistrationError{Type: ctor.out.String(), Reason: "closing has no type argument, use Close"}
		}
		if typeArgsOf(ctor.out) != c.args {
			return nil, &RegistrationError{
				Type:   ctor.out.String(),
				Reason: fmt.Sprintf("closing for %s constructs %s", c.arg, ctor.out),
			}
		}
		if seen[c.arg] {
			return nil, &RegistrationError{
				Type:   def.origin.String(),
				Reason: fmt.Sprintf("type argument %s is closed more than once", c.arg),
			}
		}
		seen[c.arg] = true

		c.ctor = ctor
		def.closings = append(def.closings, c)
	}

	if len(def.contracts) == 0 {
		def.contracts = []GenericType{def.origin}
	}
	return def, nil
}

// serves reports whether the definition is registered under the family of
// the closed contract.
func (d *genericDefinition) serves(family GenericType) bool {
	for _, c := range d.contracts {
		if c == family {
			return true
		}
	}
	return false
}

// closingFor returns the closing for the type argument of the closed
// contract. Contracts whose methods never mention the type parameter are
// satisfied by every closing, so the argument decides and assignability
// only confirms it.
func (d *genericDefinition) closingFor(contract reflect.Type) (Closing, bool) {
	args := typeArgsOf(contract)
	if args == "" {
		return Closing{}, false
	}
	for _, c := range d.closings {
		if c.args == args && c.ctor.out.AssignableTo(contract) {
			return c, true
		}
	}
	return Closing{}, false
}

// closingOf returns the closing that constructs the closed type t.
func (d *genericDefinition) closingOf(t reflect.Type) (Closing, bool) {
	for _, c := range d.closings {
		if c.ctor.out == t {
			return c, true
		}
	}
	return Closing{}, false
}

// ClosedGenericTypeID identifies a closed generic type within a scope.
type ClosedGenericTypeID struct {
	Origin GenericType
	Arg    reflect.Type
}

func (id ClosedGenericTypeID) String() string {
	return fmt.Sprintf("%s.%s[%s]", id.Origin.PkgPath, id.Origin.Name, id.Arg)
}

// ClosedGenericTypeInfo describes an open generic registration specialized
// for one type argument.
type ClosedGenericTypeInfo struct {
	// Type is the concrete closed type that gets constructed.
	Type reflect.Type
	// Arg is the type argument the origin was closed with.
	Arg reflect.Type
	// Origin is the open generic registration.
	Origin *TypeRegistration
}

// ID returns the key the info is cached under.
func (i *ClosedGenericTypeInfo) ID() ClosedGenericTypeID {
	return ClosedGenericTypeID{Origin: i.Origin.generic.origin, Arg: i.Arg}
}

// closedGenericCache is the per-scope ClosedGenericTypeCache.
type closedGenericCache struct {
	byID   map[ClosedGenericTypeID]*ClosedGenericTypeInfo
	byType map[reflect.Type]*ClosedGenericTypeInfo
}

func newClosedGenericCache() *closedGenericCache {
	return &closedGenericCache{
		byID:   make(map[ClosedGenericTypeID]*ClosedGenericTypeInfo),
		byType: make(map[reflect.Type]*ClosedGenericTypeInfo),
	}
}

func (c *closedGenericCache) add(info *ClosedGenericTypeInfo) {
	c.byID[info.ID()] = info
	c.byType[info.Type] = info
}

// closeGeneric specializes the generic registration for the closed
// contract. It returns false when none of the closings satisfies it.
func (s *LifetimeScope) closeGeneric(reg *TypeRegistration, contract reflect.Type) (*ClosedGenericTypeInfo, bool) {
	c, ok := reg.generic.closingFor(contract)
	if !ok {
		return nil, false
	}
	return s.closedGenericFor(reg, c), true
}

// closedGenericFor returns the cached info for the closing, minting it on
// first use. With inherited closed generics the ancestors' caches are
// consulted before minting.
func (s *LifetimeScope) closedGenericFor(reg *TypeRegistration, c Closing) *ClosedGenericTypeInfo {
	id := ClosedGenericTypeID{Origin: reg.generic.origin, Arg: c.arg}
	if info, ok := s.closedGenerics.byID[id]; ok {
		return info
	}

	if s.opts.inheritClosedGenerics {
		for p := s.parent; p != nil; p = p.parent {
			if info, ok := p.closedGenerics.byID[id]; ok {
				s.closedGenerics.add(info)
				return info
			}
		}
	}

	info := &ClosedGenericTypeInfo{Type: c.ctor.out, Arg: c.arg, Origin: reg}
	s.closedGenerics.add(info)
	s.log.Debug("closed generic type",
		zap.Stringer("origin", id.Origin),
		zap.Stringer("arg", c.arg),
		zap.Stringer("type", c.ctor.out))
	return info
}

// ClosedGenericType returns the closed generic type this scope has minted
// for id, if any.
func (s *LifetimeScope) ClosedGenericType(id ClosedGenericTypeID) (*ClosedGenericTypeInfo, bool) {
	info, ok := s.closedGenerics.byID[id]
	return info, ok
}

// ClosedGenericTypeOf returns the info of the closed type t if this scope
// has minted it.
func (s *LifetimeScope) ClosedGenericTypeOf(t reflect.Type) (*ClosedGenericTypeInfo, bool) {
	info, ok := s.closedGenerics.byType[t]
	return info, ok
}
