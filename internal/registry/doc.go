// Package registry provides the lazily-populated singleton registry that
// both the springboard features and the database tables are built on.
//
// A Registry maps a stable string identifier to a factory (its kind binding)
// and to at most one live instance (its singleton). Instances are created on
// first lookup and reused thereafter. Before execution the registry is closed
// over every identifier reachable through declared dependencies, then
// resolved into a dependency-first order with the dag package, and finally
// run so that each node sees only the already-executed dependencies it
// declared.
//
// Removal policy: Remove drops the singleton but keeps the kind binding, so
// a later Lookup by identifier re-creates a fresh default instance. An
// identifier that only ever arrived through Put (no factory) cannot be
// re-created and fails with a LookupError after removal.
package registry
