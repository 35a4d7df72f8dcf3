package digo

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// ResolverContext gives resolvers access to the state of the Resolve call
// they are serving.
type ResolverContext struct {
	Catalog Catalog
	Logger  *zap.Logger

	scope      *LifetimeScope
	resolution resolution
}

// ScopeID returns the ID of the lifetime scope resolving.
func (c *ResolverContext) ScopeID() string {
	return c.scope.id
}

// Instance returns the instance built for the concrete type t earlier in the
// current Resolve call. Dependencies are always built before their
// dependents.
func (c *ResolverContext) Instance(t reflect.Type) (any, bool) {
	return c.resolution.get(t)
}

// ConcreteType returns the type reg constructs when it is used to satisfy
// contract. For generic registrations this closes the registration in the
// resolving scope; ok is false when none of its closings fits contract.
func (c *ResolverContext) ConcreteType(reg Registration, contract reflect.Type) (t reflect.Type, ok bool, err error) {
	return c.scope.concreteTypeOf(reg, contract)
}

// CaptivePolicy configures how the DefaultResolver treats captive
// dependencies, where an instance would hold on to a dependency with a
// shorter lifetime than its own.
type CaptivePolicy struct {
	// SuppressWarnings disables the warning logged for each captive
	// dependency.
	SuppressWarnings bool
	// Raise fails the resolution with a CaptiveDependencyError.
	Raise bool
}

// DefaultCaptivePolicy warns and fails on captive dependencies.
func DefaultCaptivePolicy() CaptivePolicy {
	return CaptivePolicy{SuppressWarnings: false, Raise: true}
}

// DefaultResolver builds instances by calling their registered constructor
// with instances of its dependencies.
type DefaultResolver struct {
	policy CaptivePolicy
}

// NewDefaultResolver creates the default resolver with the given captive
// dependency policy.
func NewDefaultResolver(policy CaptivePolicy) *DefaultResolver {
	return &DefaultResolver{policy: policy}
}

func (r *DefaultResolver) Resolve(ctx *ResolverContext, reg Registration, injectable reflect.Type) (any, bool, error) {
	var ctor *constructor
	switch tr := reg.(type) {
	case *InstanceRegistration:
		return tr.instance, true, nil
	case *TypeRegistration:
		c, ok := tr.constructorFor(injectable)
		if !ok {
			return nil, false, nil
		}
		ctor = c
	default:
		return nil, false, &UnsupportedRegistrationError{Kind: fmt.Sprintf("%T", reg)}
	}

	args := make([]reflect.Value, len(ctor.deps))
	for i, dep := range ctor.deps {
		candidates, err := r.candidates(ctx, reg, injectable, dep)
		if err != nil {
			return nil, false, err
		}

		param := ctor.params[i]
		if dep.Multi {
			slice := reflect.MakeSlice(param, 0, len(candidates))
			for _, candidate := range candidates {
				slice = reflect.Append(slice, valueOf(candidate, param.Elem()))
			}
			args[i] = slice
			continue
		}

		if len(candidates) == 0 {
			return nil, false, &UnsatisfiedDependencyError{Type: injectable.String(), Contract: dep.Contract.String()}
		}
		args[i] = valueOf(candidates[0], param)
	}

	instance, err := ctor.call(args)
	if err != nil {
		return nil, false, &InitializationError{Type: injectable.String(), Err: err}
	}
	return instance, true, nil
}

// candidates collects the instances that satisfy dep, in registration order.
func (r *DefaultResolver) candidates(ctx *ResolverContext, reg Registration, injectable reflect.Type, dep Dependency) ([]any, error) {
	regs := ctx.Catalog.RegistrationsByContract(dep.Contract)
	out := make([]any, 0, len(regs))
	for _, candidate := range regs {
		if err := r.checkCaptive(ctx, reg, injectable, candidate, dep.Contract); err != nil {
			return nil, err
		}

		if ir, ok := candidate.(*InstanceRegistration); ok {
			out = append(out, ir.instance)
			continue
		}

		t, ok, err := ctx.ConcreteType(candidate, dep.Contract)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		instance, ok := ctx.Instance(t)
		if !ok {
			return nil, &UnsatisfiedDependencyError{Type: injectable.String(), Contract: t.String()}
		}
		out = append(out, instance)
	}
	return out, nil
}

func (r *DefaultResolver) checkCaptive(ctx *ResolverContext, reg Registration, injectable reflect.Type, dependency Registration, contract reflect.Type) error {
	if dependency.Scope().rank() >= reg.Scope().rank() {
		return nil
	}

	if !r.policy.SuppressWarnings {
		ctx.Logger.Warn("captive dependency",
			zap.Stringer("type", injectable),
			zap.Stringer("scope", reg.Scope()),
			zap.Stringer("contract", contract),
			zap.Stringer("dependency_scope", dependency.Scope()))
	}
	if r.policy.Raise {
		return &CaptiveDependencyError{
			Type:            injectable.String(),
			Contract:        contract.String(),
			Scope:           reg.Scope(),
			DependencyScope: dependency.Scope(),
		}
	}
	return nil
}

func valueOf(instance any, t reflect.Type) reflect.Value {
	if instance == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(instance)
}
