package digo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LifetimeScope resolves injectables and caches the instances whose scope
// requires it. Scopes form a tree: singletons and registered instances live
// in the root scope, scoped instances in the scope that resolved them.
//
// A LifetimeScope is not safe for concurrent use. Callers resolving from
// several goroutines must synchronize access to each scope, including the
// root that child scopes delegate singletons to.
type LifetimeScope struct {
	id             string
	catalog        Catalog
	opts           *options
	resolvers      []Resolver
	parent         *LifetimeScope
	instances      *instanceStore
	closedGenerics *closedGenericCache
	log            *zap.Logger
	shutdown       bool
}

// NewLifetimeScope creates a root scope over the catalog.
func NewLifetimeScope(catalog Catalog, opts ...Option) *LifetimeScope {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	resolvers := o.resolvers
	if len(resolvers) == 0 {
		resolvers = []Resolver{NewDefaultResolver(o.captive)}
	}

	id := uuid.NewString()
	return &LifetimeScope{
		id:             id,
		catalog:        catalog,
		opts:           o,
		resolvers:      resolvers,
		instances:      newInstanceStore(),
		closedGenerics: newClosedGenericCache(),
		log:            o.logger.With(zap.String("scope_id", id)),
	}
}

// CreateChildScope creates a scope sharing the catalog and resolvers of s,
// with its own empty instance store and closed generic cache.
func (s *LifetimeScope) CreateChildScope() *LifetimeScope {
	id := uuid.NewString()
	child := &LifetimeScope{
		id:             id,
		catalog:        s.catalog,
		opts:           s.opts,
		resolvers:      s.resolvers,
		parent:         s,
		instances:      newInstanceStore(),
		closedGenerics: newClosedGenericCache(),
		log:            s.opts.logger.With(zap.String("scope_id", id), zap.String("parent_id", s.id)),
	}
	s.log.Debug("created child scope", zap.String("child_id", id))
	return child
}

// ID returns the unique ID of the scope.
func (s *LifetimeScope) ID() string {
	return s.id
}

// Parent returns the parent scope, or nil for a root scope.
func (s *LifetimeScope) Parent() *LifetimeScope {
	return s.parent
}

// Catalog returns the catalog the scope resolves from.
func (s *LifetimeScope) Catalog() Catalog {
	return s.catalog
}

// Resolve builds an instance of t along with every dependency it needs.
// t is either an injectable type or a contract provided by exactly one
// registration.
func (s *LifetimeScope) Resolve(t reflect.Type) (any, error) {
	if s.shutdown {
		return nil, &ScopeShutdownError{ScopeID: s.id}
	}
	if t == nil {
		return nil, &BindingNotFoundError{Type: "<nil>"}
	}

	injectable, reg, err := s.lookup(t)
	if err != nil {
		return nil, err
	}

	if s.delegates(reg) {
		s.log.Debug("delegating to parent scope", zap.Stringer("type", injectable))
		return s.parent.Resolve(injectable)
	}

	g, err := s.buildDependencyGraph(injectable)
	if err != nil {
		return nil, err
	}
	sorted, err := sortDependencyGraph(g, injectable)
	if err != nil {
		return nil, err
	}

	ctx := &ResolverContext{
		Catalog:    s.catalog,
		Logger:     s.log,
		scope:      s,
		resolution: make(resolution, len(sorted)),
	}
	for _, node := range sorted {
		instance, err := s.resolveInjectable(ctx, node, node == injectable)
		if err != nil {
			return nil, err
		}
		ctx.resolution.put(node, instance)
	}

	instance, _ := ctx.resolution.get(injectable)
	if err := checkInstance(t, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

func checkInstance(t reflect.Type, instance any) error {
	if instance != nil && reflect.TypeOf(instance).AssignableTo(t) {
		return nil
	}
	got := "<nil>"
	if instance != nil {
		got = reflect.TypeOf(instance).String()
	}
	return &TypeMismatchError{Expected: t.String(), Got: got}
}

// lookup finds the registration that resolves t and the concrete type it
// constructs.
func (s *LifetimeScope) lookup(t reflect.Type) (reflect.Type, Registration, error) {
	if reg, ok := s.catalog.RegistrationByInjectable(t); ok {
		return t, reg, nil
	}

	regs := s.catalog.RegistrationsByContract(t)
	switch len(regs) {
	case 0:
		return nil, nil, &BindingNotFoundError{Type: t.String()}
	case 1:
	default:
		candidates := make([]string, len(regs))
		for i, reg := range regs {
			candidates[i] = fmt.Sprint(reg)
		}
		return nil, nil, &AmbiguousBindingError{Contract: t.String(), Candidates: candidates}
	}

	concrete, ok, err := s.concreteTypeOf(regs[0], t)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, &BindingNotFoundError{Type: t.String()}
	}
	return concrete, regs[0], nil
}

// delegates reports whether instances of reg must be built by an ancestor.
func (s *LifetimeScope) delegates(reg Registration) bool {
	return s.parent != nil && reg.Scope() == ScopeSingleton
}

// resolveInjectable produces the instance of one graph node, from the
// cache, an ancestor or the resolver chain.
func (s *LifetimeScope) resolveInjectable(ctx *ResolverContext, t reflect.Type, root bool) (any, error) {
	reg, ok := s.catalog.RegistrationByInjectable(t)
	if !ok {
		return nil, &BindingNotFoundError{Type: t.String()}
	}

	if !root && s.delegates(reg) {
		return s.parent.Resolve(t)
	}

	scope := reg.Scope()
	if scope.cached() {
		if instance, ok := s.instances.get(scope, t); ok {
			return instance, nil
		}
	}

	for _, r := range s.resolvers {
		instance, ok, err := r.Resolve(ctx, reg, t)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := checkInstance(t, instance); err != nil {
			return nil, err
		}

		s.log.Debug("resolved injectable",
			zap.Stringer("type", t),
			zap.Stringer("scope", scope))
		if scope.cached() {
			_, registered := reg.(*InstanceRegistration)
			if err := s.instances.add(scope, t, instance, !registered); err != nil {
				return nil, err
			}
		}
		return instance, nil
	}

	return nil, &ResolverExhaustedError{Type: t.String()}
}

// Shutdown releases the instances this scope constructed, newest first.
// Instances implementing Shutdowner or io.Closer are shut down; registered
// instances and those owned by other scopes are left alone. The scope
// cannot be used afterwards. Child scopes are not shut down.
func (s *LifetimeScope) Shutdown(ctx context.Context) error {
	if s.shutdown {
		return &ScopeShutdownError{ScopeID: s.id}
	}
	s.shutdown = true

	var errs []error
	owned := s.instances.owned
	for i := len(owned) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		entry := owned[i]
		var err error
		switch instance := entry.instance.(type) {
		case Shutdowner:
			err = instance.Shutdown(ctx)
		case io.Closer:
			err = instance.Close()
		default:
			continue
		}
		if err != nil {
			errs = append(errs, &ShutdownError{Type: entry.typ.String(), Err: err})
		}
	}

	s.log.Debug("scope shut down",
		zap.Int("instances", s.instances.len()),
		zap.Int("owned", len(owned)),
		zap.Int("errors", len(errs)))
	return errors.Join(errs...)
}

// Resolve resolves T from the scope.
func Resolve[T any](s *LifetimeScope) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	instance, err := s.Resolve(t)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &TypeMismatchError{Expected: t.String(), Got: reflect.TypeOf(instance).String()}
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](s *LifetimeScope) T {
	instance, err := Resolve[T](s)
	if err != nil {
		panic(err)
	}
	return instance
}
