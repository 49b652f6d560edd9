package feature

import (
	"context"
	"testing"

	"github.com/brannow/typo3-dev-springboard/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	Lifecycle
	id       string
	requires []string
	seen     []string
	log      *[]string
}

func (r *recorder) Identifier() string { return r.id }
func (r *recorder) Requires() []string { return r.requires }

func (r *recorder) Execute(_ context.Context, deps Executed) error {
	if err := r.Transition(); err != nil {
		return err
	}
	for id := range deps {
		r.seen = append(r.seen, id)
	}
	*r.log = append(*r.log, r.id)
	return nil
}

type other struct{ recorder }

func TestLifecycle(t *testing.T) {
	var l Lifecycle
	assert.Equal(t, StateConfiguring, l.State())
	assert.NoError(t, l.Mutable())

	require.NoError(t, l.Transition())
	assert.Equal(t, StateExecuted, l.State())
	assert.Equal(t, "executed", l.State().String())
	assert.ErrorIs(t, l.Mutable(), ErrAlreadyExecuted)
	assert.ErrorIs(t, l.Transition(), ErrAlreadyExecuted)
}

func TestRun(t *testing.T) {
	var log []string
	kind := func(id string, requires ...string) Kind {
		return Kind{ID: id, New: func() Feature {
			return &recorder{id: id, requires: requires, log: &log}
		}}
	}

	r := NewRegistry()
	r.Bind(kind("Request"))
	r.Bind(kind("Site", "Request"))
	_, err := r.GetOrCreate(kind("FileSystem", "Site"))
	require.NoError(t, err)

	require.NoError(t, Run(context.Background(), r))
	assert.Equal(t, []string{"Request", "Site", "FileSystem"}, log)

	fs, err := Get[*recorder](r, "FileSystem")
	require.NoError(t, err)
	assert.Equal(t, []string{"Site"}, fs.seen)
	assert.Equal(t, StateExecuted, fs.State())
}

func TestDependency(t *testing.T) {
	var log []string
	deps := Executed{"Request": &recorder{id: "Request", log: &log}}

	got, err := Dependency[*recorder](deps, "Request")
	require.NoError(t, err)
	assert.Equal(t, "Request", got.Identifier())

	_, err = Dependency[*recorder](deps, "Site")
	var lookupErr registry.LookupError
	assert.ErrorAs(t, err, &lookupErr)

	_, err = Dependency[*other](deps, "Request")
	var wrongType registry.WrongTypeError
	assert.ErrorAs(t, err, &wrongType)
}
