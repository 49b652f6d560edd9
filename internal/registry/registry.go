package registry

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Node is anything the registry can hold: a unit with a stable identifier
// and an ordered list of identifiers it depends on.
type Node interface {
	Identifier() string
	Requires() []string
}

// Kind binds a stable identifier to the factory that builds its default
// instance.
type Kind[T Node] struct {
	ID  string
	New func() T
}

// Module is implemented by packages that contribute kinds to a registry.
type Module[T Node] interface {
	Register(r *Registry[T])
}

// Registry holds the kind bindings and singleton instances for one build.
// It is not safe for concurrent use.
type Registry[T Node] struct {
	name       string
	factories  map[string]func() T
	singletons map[string]T
	// order keeps identifiers in first-seen order; it drives deterministic
	// resolution.
	order []string
}

// New creates an empty registry. name labels errors and log lines.
func New[T Node](name string) *Registry[T] {
	return &Registry[T]{
		name:       name,
		factories:  make(map[string]func() T),
		singletons: make(map[string]T),
	}
}

// Name returns the label given to New.
func (r *Registry[T]) Name() string {
	return r.name
}

// Bind registers the identifier to factory binding of kind. The first binding
// for an identifier wins; Bind reports whether this call created it.
func (r *Registry[T]) Bind(kind Kind[T]) bool {
	if kind.New == nil {
		panic(fmt.Sprintf("%s kind '%s' registered without a factory", r.name, kind.ID))
	}
	if f, exists := r.factories[kind.ID]; exists && f != nil {
		return false
	}
	slog.Debug("Binding kind.", "registry", r.name, "id", kind.ID)
	r.factories[kind.ID] = kind.New
	r.track(kind.ID)
	return true
}

// Register binds every kind contributed by the given modules.
func (r *Registry[T]) Register(modules ...Module[T]) {
	for _, m := range modules {
		m.Register(r)
	}
}

// GetOrCreate binds kind (first binding wins) and returns the singleton for
// its identifier, constructing it on first access.
func (r *Registry[T]) GetOrCreate(kind Kind[T]) (T, error) {
	r.Bind(kind)
	return r.Lookup(kind.ID)
}

// Lookup returns the singleton for id, constructing it through the bound
// factory when no live instance exists. It fails with a LookupError when the
// identifier has no factory.
func (r *Registry[T]) Lookup(id string) (T, error) {
	if node, ok := r.singletons[id]; ok {
		return node, nil
	}

	var zero T
	factory := r.factories[id]
	if factory == nil {
		return zero, LookupError{Registry: r.name, ID: id}
	}

	node := factory()
	if got := node.Identifier(); got != id {
		return zero, IdentifierMismatchError{Registry: r.name, KindID: id, GotID: got}
	}
	r.singletons[id] = node
	r.track(id)
	return node, nil
}

// Put force-overwrites the singleton stored under node's identifier. There
// is no merge: configuration held by a previous instance is discarded. An
// existing factory binding is kept.
func (r *Registry[T]) Put(node T) {
	id := node.Identifier()
	if _, exists := r.factories[id]; !exists {
		r.factories[id] = nil
	}
	r.singletons[id] = node
	r.track(id)
}

// Remove drops the singleton for id. The kind binding is retained.
func (r *Registry[T]) Remove(id string) {
	delete(r.singletons, id)
}

// Has reports whether a live instance exists for id.
func (r *Registry[T]) Has(id string) bool {
	_, ok := r.singletons[id]
	return ok
}

// IsBound reports whether id has ever been bound or put.
func (r *Registry[T]) IsBound(id string) bool {
	_, ok := r.factories[id]
	return ok
}

// Identifiers returns the identifiers of all live instances in first-seen
// order.
func (r *Registry[T]) Identifiers() []string {
	ids := make([]string, 0, len(r.singletons))
	for _, id := range r.order {
		if _, ok := r.singletons[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Each calls fn for every live instance in first-seen order.
func (r *Registry[T]) Each(fn func(T)) {
	for _, id := range r.Identifiers() {
		fn(r.singletons[id])
	}
}

// As returns the instance for id asserted to type F.
func As[F any, T Node](r *Registry[T], id string) (F, error) {
	var zero F
	node, err := r.Lookup(id)
	if err != nil {
		return zero, err
	}
	typed, ok := any(node).(F)
	if !ok {
		return zero, WrongTypeError{Registry: r.name, ID: id, GotType: reflect.TypeOf(node).String()}
	}
	return typed, nil
}

func (r *Registry[T]) track(id string) {
	for _, seen := range r.order {
		if seen == id {
			return
		}
	}
	r.order = append(r.order, id)
}
