package dag

import (
	"fmt"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:   id,
		deps: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return len(g.nodes)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist. A self-referential edge is accepted and later
// reported as a cycle. Adding the same edge twice is a no-op.
func (g *Graph) AddEdge(fromID, toID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if _, exists := toNode.deps[fromID]; exists {
		return nil
	}
	toNode.deps[fromID] = fromNode
	fromNode.dependents = append(fromNode.dependents, toNode)

	return nil
}

// Dependencies returns the IDs of the nodes the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	deps := make([]string, 0, len(n.deps))
	for _, candidate := range g.order {
		if _, ok := n.deps[candidate]; ok {
			deps = append(deps, candidate)
		}
	}
	return deps, nil
}

// Dependents returns the IDs of the nodes that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	dependents := make([]string, 0, len(n.dependents))
	for _, d := range n.dependents {
		dependents = append(dependents, d.id)
	}
	return dependents, nil
}

// TopologicalOrder returns every node exactly once, each node placed after
// all of its dependencies. Ready nodes are emitted in insertion order.
//
// If the graph contains a cycle no partial order is returned; the error is a
// CycleError describing one loop.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// remaining[id] is the number of dependencies of id not yet emitted.
	remaining := make(map[string]int, len(g.nodes))
	queue := make([]*node, 0, len(g.nodes))
	for _, id := range g.order {
		n := g.nodes[id]
		remaining[id] = len(n.deps)
		if len(n.deps) == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current.id)

		for _, dependent := range current.dependents {
			remaining[dependent.id]--
			if remaining[dependent.id] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(g.nodes) {
		if cycle := g.findCycle(); cycle != nil {
			return nil, *cycle
		}
		return nil, CycleError{}
	}
	return order, nil
}

// DetectCycles checks the graph for any cycles. It returns a CycleError if a
// cycle is found.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if cycle := g.findCycle(); cycle != nil {
		return *cycle
	}
	return nil
}

// findCycle walks the graph depth-first along dependency edges and returns
// the first loop it meets, or nil. Callers must hold the mutex.
func (g *Graph) findCycle() *CycleError {
	// Use classic depth-first search with three sets of nodes:
	// permanent: nodes that have been fully visited and are not part of a cycle.
	// onStack: nodes currently in the recursion stack for the current traversal.
	permanent := make(map[string]bool)
	onStack := make(map[string]int)
	var stack []string

	var visit func(n *node) *CycleError
	visit = func(n *node) *CycleError {
		if permanent[n.id] {
			return nil
		}
		if start, ok := onStack[n.id]; ok {
			loop := append([]string{}, stack[start:]...)
			return &CycleError{Nodes: append(loop, n.id)}
		}

		onStack[n.id] = len(stack)
		stack = append(stack, n.id)

		for _, candidate := range g.order {
			dep, ok := n.deps[candidate]
			if !ok {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}
