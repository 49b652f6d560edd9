package springboard

import (
	"errors"

	"github.com/brannow/typo3-dev-springboard/modules/filesystem"
)

var (
	// ErrAlreadyBuilt is returned by a second Build on the same Builder.
	ErrAlreadyBuilt = errors.New("springboard: already built")
	// ErrNotBuilt is returned by Finish before Build.
	ErrNotBuilt = errors.New("springboard: not built")
)

// EnvironmentError is returned when the install directory cannot host the
// generated environment.
type EnvironmentError = filesystem.EnvironmentError
