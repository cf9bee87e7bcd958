package pipeline

import (
	"fmt"

	"github.com/desertthunder/songscan/internal/shared"
)

// State is a stage in a scan run's lifecycle.
type State int

const (
	StateIdle State = iota
	StateUploading
	StateRecognizing
	StateResolving
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUploading:
		return "uploading"
	case StateRecognizing:
		return "recognizing"
	case StateResolving:
		return "resolving"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

var transitions = map[State][]State{
	StateIdle:        {StateUploading},
	StateUploading:   {StateRecognizing, StateFailed},
	StateRecognizing: {StateResolving, StateFailed},
	StateResolving:   {StateSucceeded, StateFailed},
	StateSucceeded:   {StateIdle},
	StateFailed:      {StateIdle},
}

// Transition validates a state change and returns the new state.
func (s State) Transition(next State) (State, error) {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return next, nil
		}
	}
	return s, fmt.Errorf("%w: %s to %s", shared.ErrInvalidTransition, s, next)
}
