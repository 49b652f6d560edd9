package registry

import (
	"strconv"
	"strings"

	"github.com/brannow/typo3-dev-springboard/internal/dag"
)

// CycleError is returned when the dependency graph contains a loop.
type CycleError = dag.CycleError

// LookupError is returned when an identifier is referenced that has no kind
// binding (it was never seen through a concrete kind or a dependency edge of
// a registered kind).
type LookupError struct {
	// Registry names the registry that failed ("feature", "table").
	Registry string
	ID       string
}

// Error implements the error interface.
func (e LookupError) Error() string {
	// Example: feature: unregistered identifier "Site"
	return e.Registry + ": unregistered identifier " + strconv.Quote(e.ID)
}

// MissingDependencyError is returned when a node is reached during execution
// while some of its declared dependencies have not been executed. It signals
// a broken invariant and is never recoverable.
type MissingDependencyError struct {
	Registry string
	ID       string
	Missing  []string
}

// Error implements the error interface.
func (e MissingDependencyError) Error() string {
	return e.Registry + ": " + strconv.Quote(e.ID) + " requires " + strings.Join(e.Missing, ", ") + " which were not executed"
}

// WrongTypeError is returned by typed accessors when the instance stored
// under an identifier is not of the requested type.
type WrongTypeError struct {
	Registry string
	ID       string
	GotType  string
}

// Error implements the error interface.
func (e WrongTypeError) Error() string {
	return e.Registry + ": " + strconv.Quote(e.ID) + " has wrong type (" + e.GotType + ")"
}

// IdentifierMismatchError is returned when a kind's factory builds an
// instance whose Identifier differs from the kind's ID.
type IdentifierMismatchError struct {
	Registry string
	KindID   string
	GotID    string
}

// Error implements the error interface.
func (e IdentifierMismatchError) Error() string {
	return e.Registry + ": kind " + strconv.Quote(e.KindID) + " built an instance identified as " + strconv.Quote(e.GotID)
}
