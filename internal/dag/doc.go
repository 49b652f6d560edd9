// Package dag holds the dependency graph used to order features and tables.
//
// Nodes are plain string identifiers. An edge from A to B records that B
// depends on A, so A must be materialized first. TopologicalOrder returns a
// dependency-first ordering using Kahn's algorithm and reports any cycle,
// self-edges included, as a CycleError naming the nodes on the loop.
//
// The graph remembers insertion order for nodes and edges, which makes every
// ordering it returns deterministic for a given sequence of calls.
package dag
