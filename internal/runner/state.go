package runner

import "fmt"

// State is the batch runner's lifecycle state.
type State string

const (
	StateIdle          State = "idle"
	StateLoading       State = "loading"
	StateProcessing    State = "processing"
	StateCheckpointing State = "checkpointing" // transient, re-enters processing
	StatePaused        State = "paused"
	StateCompleted     State = "completed"
)

// transitions is the single source of truth for which state changes are
// legal.
var transitions = map[State][]State{
	StateIdle:          {StateLoading},
	StateLoading:       {StateProcessing, StateCompleted},
	StateProcessing:    {StateCheckpointing, StatePaused, StateCompleted},
	StateCheckpointing: {StateProcessing, StatePaused},
	StatePaused:        {},
	StateCompleted:     {},
}

// transition validates and performs a state change.
func (s *State) transition(to State) error {
	for _, allowed := range transitions[*s] {
		if allowed == to {
			*s = to
			return nil
		}
	}
	return fmt.Errorf("invalid state transition: %s -> %s", *s, to)
}

// Terminal reports whether the run has ended, cleanly or paused.
func (s State) Terminal() bool {
	return s == StatePaused || s == StateCompleted
}
