package digo

import (
	"context"
	"reflect"
)

// Scope defines the lifetime and sharing behavior of an injectable.
type Scope string

// Available injectable scopes
const (
	// ScopeTransient creates a new instance for each dependency
	ScopeTransient Scope = "transient"
	// ScopeScoped shares an instance within one lifetime scope; child scopes get their own
	ScopeScoped Scope = "scoped"
	// ScopeSingleton shares a single instance across the whole scope tree
	ScopeSingleton Scope = "singleton"
)

// rank orders scopes by how long their instances live.
func (s Scope) rank() int {
	switch s {
	case ScopeScoped:
		return 1
	case ScopeSingleton:
		return 2
	default:
		return 0
	}
}

// cached reports whether instances of this scope are kept by a lifetime scope.
func (s Scope) cached() bool {
	return s == ScopeScoped || s == ScopeSingleton
}

func (s Scope) valid() bool {
	switch s {
	case ScopeTransient, ScopeScoped, ScopeSingleton:
		return true
	default:
		return false
	}
}

func (s Scope) String() string {
	return string(s)
}

// Resolver is a pluggable instantiation strategy. A lifetime scope asks its
// resolvers in order; the first one that reports ok wins.
type Resolver interface {
	// Resolve produces an instance of injectable, which is the concrete type
	// of reg (the closed type for generic registrations). Returning ok=false
	// passes the request on to the next resolver.
	Resolve(ctx *ResolverContext, reg Registration, injectable reflect.Type) (instance any, ok bool, err error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx *ResolverContext, reg Registration, injectable reflect.Type) (any, bool, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx *ResolverContext, reg Registration, injectable reflect.Type) (any, bool, error) {
	return f(ctx, reg, injectable)
}

// Shutdowner is implemented by injectables that need cleanup when the scope
// owning them is shut down. Injectables implementing io.Closer are closed as
// well.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}
