package digo

import (
	"fmt"
	"strings"
)

// CircularDependencyError represents a cycle in the dependency graph of a
// resolved type. Chain lists the cycle, ending with the repeated type.
type CircularDependencyError struct {
	Type  string
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected for type %s: %s", e.Type, strings.Join(e.Chain, " -> "))
}

// DisconnectedGraphError means the dependency graph contained types that
// were not reachable from the resolved type. It indicates a bug in graph
// construction rather than a registration problem.
type DisconnectedGraphError struct {
	Type      string
	Unvisited []string
}

func (e *DisconnectedGraphError) Error() string {
	return fmt.Sprintf("dependency graph of %s is disconnected: %s", e.Type, strings.Join(e.Unvisited, ", "))
}

// BindingNotFoundError represents a missing registration.
type BindingNotFoundError struct {
	Type string
}

func (e *BindingNotFoundError) Error() string {
	return fmt.Sprintf("no binding found for type: %s", e.Type)
}

// AmbiguousBindingError is returned when a contract is resolved directly
// but more than one registration provides it.
type AmbiguousBindingError struct {
	Contract   string
	Candidates []string
}

func (e *AmbiguousBindingError) Error() string {
	return fmt.Sprintf("contract %s has %d bindings (%s); resolve one of the injectable types instead",
		e.Contract, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// UnsatisfiedDependencyError represents a single-instance dependency that no
// registration can satisfy.
type UnsatisfiedDependencyError struct {
	Type     string
	Contract string
}

func (e *UnsatisfiedDependencyError) Error() string {
	return fmt.Sprintf("cannot satisfy the dependency of %s on %s", e.Type, e.Contract)
}

// InvalidConstructorError represents a constructor that cannot be used to
// derive the dependencies of an injectable.
type InvalidConstructorError struct {
	Type   string
	Reason string
}

func (e *InvalidConstructorError) Error() string {
	return fmt.Sprintf("invalid constructor for type %s: %s", e.Type, e.Reason)
}

// UnsupportedRegistrationError represents a Registration implementation the
// container does not know how to handle.
type UnsupportedRegistrationError struct {
	Kind string
}

func (e *UnsupportedRegistrationError) Error() string {
	return fmt.Sprintf("unsupported type of injectable registration: %s", e.Kind)
}

// CaptiveDependencyError represents an injectable that depends on a
// registration with a shorter lifetime than its own.
type CaptiveDependencyError struct {
	Type            string
	Contract        string
	Scope           Scope
	DependencyScope Scope
}

func (e *CaptiveDependencyError) Error() string {
	return fmt.Sprintf("detected captive dependency: %s %s depends on %s %s",
		e.Scope, e.Type, e.DependencyScope, e.Contract)
}

// ResolverExhaustedError is returned when no resolver produced an instance.
type ResolverExhaustedError struct {
	Type string
}

func (e *ResolverExhaustedError) Error() string {
	return fmt.Sprintf("no resolver produced an instance of type %s", e.Type)
}

// GenericArityError represents a generic registration whose injectable or
// contract does not have exactly one type parameter.
type GenericArityError struct {
	Type  string
	Arity int
}

func (e *GenericArityError) Error() string {
	return fmt.Sprintf("generic type %s must have exactly one type parameter, has %d", e.Type, e.Arity)
}

// RegistrationError represents an invalid registration.
type RegistrationError struct {
	Type   string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("invalid registration for type %s: %s", e.Type, e.Reason)
}

// NilServiceError represents an attempt to register a nil instance.
type NilServiceError struct {
	Type string
}

func (e *NilServiceError) Error() string {
	return fmt.Sprintf("nil service provided for type: %s", e.Type)
}

// InitializationError represents a constructor that returned an error.
type InitializationError struct {
	Type string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed for type %s: %v", e.Type, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// MissingContextValueError represents a missing required context value.
type MissingContextValueError struct {
	Key string
}

func (e *MissingContextValueError) Error() string {
	return fmt.Sprintf("required context value not found: %s", e.Key)
}

// TypeMismatchError represents a resolved instance that does not satisfy the
// requested type.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// ShutdownError represents an instance failing to shut down.
type ShutdownError struct {
	Type string
	Err  error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("shutdown failed for type %s: %v", e.Type, e.Err)
}

func (e *ShutdownError) Unwrap() error {
	return e.Err
}

// ScopeShutdownError is returned when a scope is used after Shutdown.
type ScopeShutdownError struct {
	ScopeID string
}

func (e *ScopeShutdownError) Error() string {
	return fmt.Sprintf("lifetime scope %s has been shut down", e.ScopeID)
}
