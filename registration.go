package digo

import (
	"fmt"
	"reflect"
)

// Registration binds an injectable, or a ready-made instance, to the
// contracts it can be resolved by and to a lifetime scope.
type Registration interface {
	// Contracts returns the types the registration can be looked up by.
	Contracts() []reflect.Type
	// Scope returns the lifetime of the instances it produces.
	Scope() Scope
}

// TypeRegistration registers a constructor. Generic registrations hold one
// constructor per closed type argument instead of a single one.
type TypeRegistration struct {
	contracts  []reflect.Type
	scope      Scope
	injectable reflect.Type
	ctor       *constructor
	generic    *genericDefinition
}

// NewTypeRegistration registers the constructor ctor under the given scope.
// The injectable is the type ctor returns; with no contracts it is its own
// contract.
func NewTypeRegistration(ctor any, scope Scope, contracts ...reflect.Type) (*TypeRegistration, error) {
	c, err := newConstructor(ctor)
	if err != nil {
		return nil, err
	}
	if !scope.valid() {
		return nil, &RegistrationError{Type: c.out.String(), Reason: fmt.Sprintf("unknown scope %q", scope)}
	}

	if len(contracts) == 0 {
		contracts = []reflect.Type{c.out}
	}
	if err := checkContracts(c.out, contracts); err != nil {
		return nil, err
	}

	return &TypeRegistration{
		contracts:  contracts,
		scope:      scope,
		injectable: c.out,
		ctor:       c,
	}, nil
}

// NewGenericRegistration registers an open generic injectable through its
// closings. Every contract is an instantiation of a generic contract
// family, for example As[Repository[User]](), and the registration serves
// every member of those families one of the closings can satisfy. With no
// contracts the injectable's own family is used.
func NewGenericRegistration(scope Scope, contracts []reflect.Type, closings ...Closing) (*TypeRegistration, error) {
	def, err := newGenericDefinition(contracts, closings)
	if err != nil {
		return nil, err
	}
	if !scope.valid() {
		return nil, &RegistrationError{Type: def.origin.String(), Reason: fmt.Sprintf("unknown scope %q", scope)}
	}

	if len(contracts) == 0 {
		contracts = make([]reflect.Type, 0, len(def.closings))
		for _, c := range def.closings {
			contracts = append(contracts, c.ctor.out)
		}
	}

	return &TypeRegistration{
		contracts: contracts,
		scope:     scope,
		generic:   def,
	}, nil
}

func (r *TypeRegistration) Contracts() []reflect.Type {
	out := make([]reflect.Type, len(r.contracts))
	copy(out, r.contracts)
	return out
}

func (r *TypeRegistration) Scope() Scope {
	return r.scope
}

// Injectable returns the constructed type. It is nil for generic
// registrations, whose closed types depend on the contract being resolved.
func (r *TypeRegistration) Injectable() reflect.Type {
	return r.injectable
}

// IsGeneric reports whether the registration is an open generic one.
func (r *TypeRegistration) IsGeneric() bool {
	return r.generic != nil
}

// Origin returns the open generic type of a generic registration.
func (r *TypeRegistration) Origin() (GenericType, bool) {
	if r.generic == nil {
		return GenericType{}, false
	}
	return r.generic.origin, true
}

// Closings returns the closed injectable types of a generic registration.
func (r *TypeRegistration) Closings() []reflect.Type {
	if r.generic == nil {
		return nil
	}
	out := make([]reflect.Type, 0, len(r.generic.closings))
	for _, c := range r.generic.closings {
		out = append(out, c.ctor.out)
	}
	return out
}

// constructorFor returns the constructor building t, which is the
// injectable or one of the closed types.
func (r *TypeRegistration) constructorFor(t reflect.Type) (*constructor, bool) {
	if r.generic == nil {
		return r.ctor, t == r.injectable
	}
	c, ok := r.generic.closingOf(t)
	if !ok {
		return nil, false
	}
	return c.ctor, true
}

func (r *TypeRegistration) String() string {
	if r.generic != nil {
		return fmt.Sprintf("TypeRegistration(%s, %s)", r.generic.origin, r.scope)
	}
	return fmt.Sprintf("TypeRegistration(%s, %s)", r.injectable, r.scope)
}

// InstanceRegistration registers an already built instance. Instances are
// always singletons.
type InstanceRegistration struct {
	contracts []reflect.Type
	instance  any
	typ       reflect.Type
}

// NewInstanceRegistration registers instance under the given contracts, or
// under its own runtime type when none are given.
func NewInstanceRegistration(instance any, contracts ...reflect.Type) (*InstanceRegistration, error) {
	if isNil(instance) {
		name := "<nil>"
		if instance != nil {
			name = reflect.TypeOf(instance).String()
		}
		return nil, &NilServiceError{Type: name}
	}

	typ := reflect.TypeOf(instance)
	if len(contracts) == 0 {
		contracts = []reflect.Type{typ}
	}
	if err := checkContracts(typ, contracts); err != nil {
		return nil, err
	}

	return &InstanceRegistration{contracts: contracts, instance: instance, typ: typ}, nil
}

func (r *InstanceRegistration) Contracts() []reflect.Type {
	out := make([]reflect.Type, len(r.contracts))
	copy(out, r.contracts)
	return out
}

func (r *InstanceRegistration) Scope() Scope {
	return ScopeSingleton
}

// Instance returns the registered instance.
func (r *InstanceRegistration) Instance() any {
	return r.instance
}

// Injectable returns the runtime type of the instance.
func (r *InstanceRegistration) Injectable() reflect.Type {
	return r.typ
}

func (r *InstanceRegistration) String() string {
	return fmt.Sprintf("InstanceRegistration(%s)", r.typ)
}

func checkContracts(injectable reflect.Type, contracts []reflect.Type) error {
	for _, contract := range contracts {
		if contract == nil {
			return &RegistrationError{Type: injectable.String(), Reason: "contract cannot be nil"}
		}
		if !injectable.AssignableTo(contract) {
			return &RegistrationError{
				Type:   injectable.String(),
				Reason: fmt.Sprintf("does not satisfy contract %s", contract),
			}
		}
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// injectableOf returns the concrete type of a non-generic registration.
func injectableOf(reg Registration) (reflect.Type, error) {
	switch r := reg.(type) {
	case *InstanceRegistration:
		return r.typ, nil
	case *TypeRegistration:
		if r.generic != nil {
			return nil, nil
		}
		return r.injectable, nil
	default:
		return nil, &UnsupportedRegistrationError{Kind: fmt.Sprintf("%T", reg)}
	}
}
