// Package journal provides an optional, persistent history of event
// transitions, backed by BoltDB. One journal database can be shared by any
// number of events; records are keyed by event name.
package journal

// Transition is a kind of state change recorded for an event.
type Transition string

const (
	// TransitionSet represents that a handle replaced the guarded value.
	TransitionSet Transition = "set"
	// TransitionWait represents that a handle started to block on a predicate.
	TransitionWait Transition = "wait"
	// TransitionMatched represents that a blocked handle observed a value
	// satisfying its predicate.
	TransitionMatched Transition = "matched"
	// TransitionReset represents that a matched wait atomically replaced the
	// value with its reset value.
	TransitionReset Transition = "reset"
	// TransitionTimeout represents that a wait ended by deadline expiry.
	TransitionTimeout Transition = "timeout"
	// TransitionPoisoned represents that an operation failed because the
	// event's critical section was abandoned.
	TransitionPoisoned Transition = "poisoned"
	// TransitionCleared represents that a poisoned event was re-armed with a
	// replacement value.
	TransitionCleared Transition = "cleared"
)

type (
	// TransitionRecord holds the journaled transitions of one event.
	TransitionRecord struct {
		Logs []TransitionLog `json:"logs"`
	}

	TransitionLog struct {
		Transition Transition `json:"transition"`
		Operator   string     `json:"operator"`
		Value      string     `json:"value,omitempty"`
		Timestamp  int64      `json:"ts,string"`
	}
)
