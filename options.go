package digo

import "go.uber.org/zap"

type options struct {
	logger                *zap.Logger
	resolvers             []Resolver
	captive               CaptivePolicy
	inheritClosedGenerics bool
}

// Option configures a root lifetime scope. Child scopes share the options
// of their root.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		logger:  zap.NewNop(),
		captive: DefaultCaptivePolicy(),
	}
}

// WithLogger sets the logger scopes report to. The default discards
// everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithResolvers replaces the resolver chain. Resolvers are asked in order;
// include NewDefaultResolver to fall back to constructor injection.
func WithResolvers(resolvers ...Resolver) Option {
	return func(o *options) {
		o.resolvers = append([]Resolver(nil), resolvers...)
	}
}

// WithCaptivePolicy sets the captive dependency policy of the default
// resolver. It has no effect on a chain given to WithResolvers.
func WithCaptivePolicy(policy CaptivePolicy) Option {
	return func(o *options) {
		o.captive = policy
	}
}

// WithInheritedClosedGenerics makes child scopes reuse generic types closed
// by their ancestors instead of closing them again in their own cache.
func WithInheritedClosedGenerics(inherit bool) Option {
	return func(o *options) {
		o.inheritClosedGenerics = inherit
	}
}
