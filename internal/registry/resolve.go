package registry

import (
	"context"
	"fmt"

	"github.com/brannow/typo3-dev-springboard/internal/ctxlog"
	"github.com/brannow/typo3-dev-springboard/internal/dag"
)

// ExecFunc materializes one node. deps holds exactly the node's declared
// dependencies, all of which have already been executed.
type ExecFunc[T Node] func(ctx context.Context, node T, deps map[string]T) error

// CloseOver instantiates every identifier reachable through declared
// dependencies that has no live instance yet, until the set of live
// instances is closed. Dependencies without a kind binding fail with a
// LookupError.
func (r *Registry[T]) CloseOver() error {
	for {
		added := false
		for _, id := range r.Identifiers() {
			for _, dep := range r.singletons[id].Requires() {
				if r.Has(dep) {
					continue
				}
				if _, err := r.Lookup(dep); err != nil {
					return fmt.Errorf("dependency of %q: %w", id, err)
				}
				added = true
			}
		}
		if !added {
			return nil
		}
	}
}

// Order computes a dependency-first execution order over the live instances.
// It does not modify the registry; call CloseOver first or use Resolve.
func (r *Registry[T]) Order() ([]string, error) {
	graph := dag.New()
	ids := r.Identifiers()
	for _, id := range ids {
		graph.AddNode(id)
	}
	for _, id := range ids {
		for _, dep := range r.singletons[id].Requires() {
			if !graph.HasNode(dep) {
				return nil, LookupError{Registry: r.name, ID: dep}
			}
			if err := graph.AddEdge(dep, id); err != nil {
				return nil, err
			}
		}
	}
	return graph.TopologicalOrder()
}

// Resolve closes the registry over its reachable dependencies and returns the
// execution order.
func (r *Registry[T]) Resolve() ([]string, error) {
	if err := r.CloseOver(); err != nil {
		return nil, err
	}
	return r.Order()
}

// Run resolves the execution order and calls exec for every node in it.
// Each call receives only the already-executed nodes its declared
// dependencies name. Execution stops at the first error.
func (r *Registry[T]) Run(ctx context.Context, exec ExecFunc[T]) error {
	logger := ctxlog.FromContext(ctx)

	order, err := r.Resolve()
	if err != nil {
		return err
	}
	logger.Debug("Execution order resolved.", "registry", r.name, "order", order)

	executed := make(map[string]T, len(order))
	for _, id := range order {
		node := r.singletons[id]

		required := node.Requires()
		deps := make(map[string]T, len(required))
		var missing []string
		for _, dep := range required {
			done, ok := executed[dep]
			if !ok {
				missing = append(missing, dep)
				continue
			}
			deps[dep] = done
		}
		if len(missing) > 0 {
			return MissingDependencyError{Registry: r.name, ID: id, Missing: missing}
		}

		if err := exec(ctx, node, deps); err != nil {
			return fmt.Errorf("%s %q: %w", r.name, id, err)
		}
		executed[id] = node
		logger.Debug("Node executed.", "registry", r.name, "id", id)
	}
	return nil
}
