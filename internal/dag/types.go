package dag

import (
	"strings"
	"sync"
)

// Graph is a collection of nodes and their dependencies, representing a DAG.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order keeps node IDs in insertion order.
	order []string
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	id string
	// deps holds the set of nodes that this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the set of nodes that depend on this node (successors),
	// in the order the edges were added.
	dependents []*node
}

// CycleError is returned when the graph cannot be ordered because of a
// circular dependency. Nodes lists one offending loop, closing on its first
// element (for example [a b a]).
type CycleError struct {
	Nodes []string
}

// Error implements the error interface.
func (e CycleError) Error() string {
	if len(e.Nodes) == 0 {
		return "circular dependency detected"
	}
	return "circular dependency detected: " + strings.Join(e.Nodes, " -> ")
}
