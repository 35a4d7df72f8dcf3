package digo

import (
	"fmt"
	"reflect"
)

type instanceKey struct {
	scope Scope
	typ   reflect.Type
}

// instanceStore caches the scoped and singleton instances of one lifetime
// scope. It holds at most one instance per scope kind and type.
type instanceStore struct {
	instances map[instanceKey]any
	// owned lists the constructed instances in construction order.
	owned []ownedInstance
}

type ownedInstance struct {
	typ      reflect.Type
	instance any
}

func newInstanceStore() *instanceStore {
	return &instanceStore{instances: make(map[instanceKey]any)}
}

func (s *instanceStore) get(scope Scope, t reflect.Type) (any, bool) {
	instance, ok := s.instances[instanceKey{scope: scope, typ: t}]
	return instance, ok
}

// add caches instance. constructed marks instances the scope built itself
// and is therefore responsible for shutting down.
func (s *instanceStore) add(scope Scope, t reflect.Type, instance any, constructed bool) error {
	key := instanceKey{scope: scope, typ: t}
	if _, ok := s.instances[key]; ok {
		return fmt.Errorf("digo: instance store already holds a %s instance of %s", scope, t)
	}
	s.instances[key] = instance
	if constructed {
		s.owned = append(s.owned, ownedInstance{typ: t, instance: instance})
	}
	return nil
}

func (s *instanceStore) len() int {
	return len(s.instances)
}

// resolution holds the instances built by a single Resolve call, including
// transient ones, keyed by concrete type.
type resolution map[reflect.Type]any

func (r resolution) get(t reflect.Type) (any, bool) {
	instance, ok := r[t]
	return instance, ok
}

func (r resolution) put(t reflect.Type, instance any) {
	r[t] = instance
}
