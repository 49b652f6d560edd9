package feature

// State is the lifecycle position of a feature within one build.
type State int

const (
	// StateConfiguring accepts mutations.
	StateConfiguring State = iota
	// StateExecuted is terminal: side effects have been materialized.
	StateExecuted
)

func (s State) String() string {
	switch s {
	case StateConfiguring:
		return "configuring"
	case StateExecuted:
		return "executed"
	default:
		return "unknown"
	}
}

// Lifecycle is the two-state guard embedded by every feature. Mutators call
// Mutable before changing state; Execute calls Transition exactly once.
type Lifecycle struct {
	state State
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	return l.state
}

// Mutable returns ErrAlreadyExecuted once the feature has been executed.
func (l *Lifecycle) Mutable() error {
	if l.state == StateExecuted {
		return ErrAlreadyExecuted
	}
	return nil
}

// Transition moves the feature to StateExecuted. It fails when called twice.
func (l *Lifecycle) Transition() error {
	if err := l.Mutable(); err != nil {
		return err
	}
	l.state = StateExecuted
	return nil
}
