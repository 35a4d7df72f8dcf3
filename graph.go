package digo

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/centraunit/digo/internal/graph"
	"go.uber.org/zap"
)

// buildDependencyGraph expands root into the graph of every concrete type
// needed to construct it. An edge A -> B means A requires B.
func (s *LifetimeScope) buildDependencyGraph(root reflect.Type) (*graph.Graph[reflect.Type], error) {
	g := graph.New[reflect.Type]()
	pending := []reflect.Type{root}

	for len(pending) > 0 {
		dependee := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if !g.TryAddNode(dependee) {
			continue
		}

		reg, ok := s.catalog.RegistrationByInjectable(dependee)
		if !ok {
			return nil, &BindingNotFoundError{Type: dependee.String()}
		}
		// Process-wide instances are built by the root scope, which expands
		// their dependencies itself.
		if dependee != root && s.delegates(reg) {
			continue
		}

		deps, err := dependenciesOf(reg, dependee)
		if err != nil {
			return nil, err
		}

		for _, dep := range deps {
			regs := s.catalog.RegistrationsByContract(dep.Contract)
			if len(regs) == 0 && !dep.Multi {
				return nil, &UnsatisfiedDependencyError{Type: dependee.String(), Contract: dep.Contract.String()}
			}

			for _, candidate := range regs {
				concrete, ok, err := s.concreteTypeOf(candidate, dep.Contract)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				g.TryAddEdge(dependee, concrete)
				pending = append(pending, concrete)
			}
		}
	}

	s.log.Debug("built dependency graph",
		zap.Stringer("type", root),
		zap.Int("nodes", g.Len()))
	return g, nil
}

// dependenciesOf returns the dependency declaration of the concrete type t
// provided by reg.
func dependenciesOf(reg Registration, t reflect.Type) ([]Dependency, error) {
	switch r := reg.(type) {
	case *InstanceRegistration:
		return nil, nil
	case *TypeRegistration:
		ctor, ok := r.constructorFor(t)
		if !ok {
			return nil, &InvalidConstructorError{Type: t.String(), Reason: fmt.Sprintf("%v has no constructor for it", r)}
		}
		return ctor.dependencies(), nil
	default:
		return nil, &UnsupportedRegistrationError{Kind: fmt.Sprintf("%T", reg)}
	}
}

// concreteTypeOf returns the type reg constructs to satisfy contract,
// closing generic registrations in this scope.
func (s *LifetimeScope) concreteTypeOf(reg Registration, contract reflect.Type) (reflect.Type, bool, error) {
	if tr, ok := reg.(*TypeRegistration); ok && tr.generic != nil {
		info, ok := s.closeGeneric(tr, contract)
		if !ok {
			return nil, false, nil
		}
		return info.Type, true, nil
	}

	t, err := injectableOf(reg)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// sortDependencyGraph orders the graph dependencies first and translates
// sort failures.
func sortDependencyGraph(g *graph.Graph[reflect.Type], root reflect.Type) ([]reflect.Type, error) {
	sorted, err := graph.TopologicalSort(g, root)
	if err == nil {
		return sorted, nil
	}

	var cycle *graph.CycleError[reflect.Type]
	if errors.As(err, &cycle) {
		return nil, &CircularDependencyError{Type: root.String(), Chain: typeNames(cycle.Path())}
	}
	var disconnected *graph.DisconnectedError[reflect.Type]
	if errors.As(err, &disconnected) {
		return nil, &DisconnectedGraphError{Type: root.String(), Unvisited: typeNames(disconnected.Unvisited)}
	}
	return nil, fmt.Errorf("sorting dependencies of %s: %w", root, err)
}

func typeNames(types []reflect.Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
