package digo

import (
	"fmt"
	"reflect"
	"sort"
)

// Catalog is the immutable index of registrations shared by every lifetime
// scope built from it. It is safe for concurrent use.
type Catalog interface {
	// Registrations returns every registration in registration order.
	Registrations() []Registration
	// RegistrationsByContract returns the registrations that can provide
	// contract, in registration order. Generic registrations are included
	// when one of their closings satisfies the closed contract.
	RegistrationsByContract(contract reflect.Type) []Registration
	// RegistrationByInjectable returns the registration constructing t.
	// Closed types of generic registrations map to their generic
	// registration.
	RegistrationByInjectable(t reflect.Type) (Registration, bool)
}

type catalog struct {
	entries      []Registration
	byContract   map[reflect.Type][]int
	byFamily     map[GenericType][]int
	byInjectable map[reflect.Type]Registration
}

// NewCatalog indexes the registrations. Two registrations with the same
// injectable type are rejected.
func NewCatalog(regs ...Registration) (Catalog, error) {
	c := &catalog{
		entries:      make([]Registration, 0, len(regs)),
		byContract:   make(map[reflect.Type][]int),
		byFamily:     make(map[GenericType][]int),
		byInjectable: make(map[reflect.Type]Registration),
	}
	for _, reg := range regs {
		if err := c.add(reg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *catalog) add(reg Registration) error {
	if reg == nil {
		return &RegistrationError{Type: "<nil>", Reason: "registration cannot be nil"}
	}

	var injectables []reflect.Type
	var generic *genericDefinition
	switch r := reg.(type) {
	case *TypeRegistration:
		if r.generic != nil {
			generic = r.generic
			injectables = r.Closings()
		} else {
			injectables = []reflect.Type{r.injectable}
		}
	case *InstanceRegistration:
		injectables = []reflect.Type{r.typ}
	default:
		return &UnsupportedRegistrationError{Kind: fmt.Sprintf("%T", reg)}
	}

	for _, t := range injectables {
		if existing, ok := c.byInjectable[t]; ok {
			return &RegistrationError{
				Type:   t.String(),
				Reason: fmt.Sprintf("injectable is already registered by %v", existing),
			}
		}
	}

	seq := len(c.entries)
	c.entries = append(c.entries, reg)
	for _, t := range injectables {
		c.byInjectable[t] = reg
	}
	for _, contract := range reg.Contracts() {
		c.byContract[contract] = appendUnique(c.byContract[contract], seq)
	}
	if generic != nil {
		for _, family := range generic.contracts {
			c.byFamily[family] = appendUnique(c.byFamily[family], seq)
		}
	}
	return nil
}

func (c *catalog) Registrations() []Registration {
	out := make([]Registration, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *catalog) RegistrationsByContract(contract reflect.Type) []Registration {
	seqs := append([]int(nil), c.byContract[contract]...)
	if family, arity := genericTypeOf(contract); arity == 1 {
		for _, seq := range c.byFamily[family] {
			seqs = appendUnique(seqs, seq)
		}
	}
	if len(seqs) == 0 {
		return nil
	}

	sort.Ints(seqs)
	out := make([]Registration, 0, len(seqs))
	for _, seq := range seqs {
		reg := c.entries[seq]
		if tr, ok := reg.(*TypeRegistration); ok && tr.generic != nil {
			if _, ok := tr.generic.closingFor(contract); !ok {
				continue
			}
		}
		out = append(out, reg)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (c *catalog) RegistrationByInjectable(t reflect.Type) (Registration, bool) {
	reg, ok := c.byInjectable[t]
	return reg, ok
}

func appendUnique(seqs []int, seq int) []int {
	for _, s := range seqs {
		if s == seq {
			return seqs
		}
	}
	return append(seqs, seq)
}

// CatalogBuilder collects registrations for a Catalog.
type CatalogBuilder struct {
	regs []Registration
}

// NewCatalogBuilder creates an empty builder.
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{}
}

// RegisterType registers a constructor. See NewTypeRegistration.
func (b *CatalogBuilder) RegisterType(ctor any, scope Scope, contracts ...reflect.Type) error {
	reg, err := NewTypeRegistration(ctor, scope, contracts...)
	if err != nil {
		return err
	}
	b.regs = append(b.regs, reg)
	return nil
}

// RegisterInstance registers a ready-made singleton. See
// NewInstanceRegistration.
func (b *CatalogBuilder) RegisterInstance(instance any, contracts ...reflect.Type) error {
	reg, err := NewInstanceRegistration(instance, contracts...)
	if err != nil {
		return err
	}
	b.regs = append(b.regs, reg)
	return nil
}

// RegisterGeneric registers an open generic injectable. See
// NewGenericRegistration.
func (b *CatalogBuilder) RegisterGeneric(scope Scope, contracts []reflect.Type, closings ...Closing) error {
	reg, err := NewGenericRegistration(scope, contracts, closings...)
	if err != nil {
		return err
	}
	b.regs = append(b.regs, reg)
	return nil
}

// Register adds a registration built elsewhere.
func (b *CatalogBuilder) Register(reg Registration) {
	b.regs = append(b.regs, reg)
}

// Build creates the catalog. The builder can keep being used afterwards
// without affecting the catalog.
func (b *CatalogBuilder) Build() (Catalog, error) {
	return NewCatalog(b.regs...)
}

// As returns the reflect.Type of T, which is convenient for naming
// interface contracts: As[Database]().
func As[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
