// Package feature defines the unit the springboard composes: a named,
// dependency-declaring piece of configuration that materializes its side
// effects exactly once.
package feature

import (
	"context"
	"errors"
	"reflect"

	"github.com/brannow/typo3-dev-springboard/internal/registry"
)

// RegistryName labels feature registry errors and log lines.
const RegistryName = "feature"

// ErrAlreadyExecuted is returned by mutators called after a feature has been
// materialized, and by a second Execute.
var ErrAlreadyExecuted = errors.New("feature already executed")

// Feature is a unit of configuration-then-side-effect.
type Feature interface {
	registry.Node
	// Execute materializes the feature. deps holds exactly the features
	// named by Requires, all already executed.
	Execute(ctx context.Context, deps Executed) error
}

// Executed maps identifiers to features whose materialization completed.
type Executed map[string]Feature

type (
	// Kind binds a feature identifier to its default factory.
	Kind = registry.Kind[Feature]
	// Registry is the build-scoped feature registry.
	Registry = registry.Registry[Feature]
	// Module contributes feature kinds to a Registry.
	Module = registry.Module[Feature]
)

// NewRegistry creates an empty feature registry.
func NewRegistry() *Registry {
	return registry.New[Feature](RegistryName)
}

// Run executes every registered feature in dependency order.
func Run(ctx context.Context, r *Registry) error {
	return r.Run(ctx, func(ctx context.Context, f Feature, deps map[string]Feature) error {
		return f.Execute(ctx, Executed(deps))
	})
}

// Dependency returns the executed dependency id as type F.
func Dependency[F Feature](deps Executed, id string) (F, error) {
	var zero F
	f, ok := deps[id]
	if !ok {
		return zero, registry.LookupError{Registry: RegistryName, ID: id}
	}
	typed, ok := f.(F)
	if !ok {
		return zero, registry.WrongTypeError{Registry: RegistryName, ID: id, GotType: reflect.TypeOf(f).String()}
	}
	return typed, nil
}

// Get returns the registered feature id as type F, creating it from its bound
// kind when needed.
func Get[F Feature](r *Registry, id string) (F, error) {
	return registry.As[F](r, id)
}
