package digo

import (
	"context"
	"reflect"
)

type scopeContextKey struct{}

// NewContext returns a copy of ctx carrying the lifetime scope, typically a
// child scope created for one request.
func NewContext(ctx context.Context, scope *LifetimeScope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// FromContext returns the lifetime scope stored in ctx by NewContext.
func FromContext(ctx context.Context) (*LifetimeScope, bool) {
	if ctx == nil {
		return nil, false
	}
	scope, ok := ctx.Value(scopeContextKey{}).(*LifetimeScope)
	return scope, ok && scope != nil
}

// ResolveContext resolves T from the lifetime scope stored in ctx.
func ResolveContext[T any](ctx context.Context) (T, error) {
	scope, ok := FromContext(ctx)
	if !ok {
		var zero T
		return zero, &MissingContextValueError{Key: "lifetime scope"}
	}
	return Resolve[T](scope)
}

// ResolveTypeContext resolves t from the lifetime scope stored in ctx.
func ResolveTypeContext(ctx context.Context, t reflect.Type) (any, error) {
	scope, ok := FromContext(ctx)
	if !ok {
		return nil, &MissingContextValueError{Key: "lifetime scope"}
	}
	return scope.Resolve(t)
}
