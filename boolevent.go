package waitevent

import "context"

// Signal is a boolean event: a flag that goroutines can set, re-arm and
// block on. It is implemented by [ManualResetEvent] and [AutoResetEvent] of
// this package, and by their counterparts in the native subpackage, so the
// same waiting code can run against either backend.
type Signal interface {
	// Set signals the event. Signaling an already-signaled event changes
	// nothing observable.
	Set() error
	// Reset re-arms the event to the non-signaled state.
	Reset() error
	// Wait blocks until the event is signaled, bounded by the deadline of ctx.
	Wait(ctx context.Context) error
}

// ManualResetEvent is a boolean [Event] that stays signaled after a
// successful wait: every blocked handle is released, and the flag keeps
// releasing waiters until [ManualResetEvent.Reset] is called.
type ManualResetEvent struct {
	_e *Event[bool]
}

// NewManualResetEvent creates a manual-reset event with the initial state.
func NewManualResetEvent(initialState bool, opts ...*NewOption) *ManualResetEvent {
	return &ManualResetEvent{
		_e: New(initialState, opts...),
	}
}

// NewManualResetEventFrom gives manual-reset behavior to an existing boolean
// event.
func NewManualResetEventFrom(e *Event[bool]) *ManualResetEvent {
	return &ManualResetEvent{
		_e: e,
	}
}

// AsEvent returns the underlying boolean event.
func (e *ManualResetEvent) AsEvent() *Event[bool] {
	return e._e
}

// Clone returns a new handle to the same flag.
func (e *ManualResetEvent) Clone() *ManualResetEvent {
	return &ManualResetEvent{
		_e: e._e.Clone(),
	}
}

// Set signals the event and wakes all blocked handles.
func (e *ManualResetEvent) Set() error {
	return e._e.Set(true)
}

// Reset re-arms the event.
func (e *ManualResetEvent) Reset() error {
	return e._e.Set(false)
}

// IsSet reports whether the event is signaled.
func (e *ManualResetEvent) IsSet() (bool, error) {
	return e._e.Value()
}

// Wait blocks until the event is signaled. The flag is left set.
func (e *ManualResetEvent) Wait(ctx context.Context) error {
	_, err := e._e.Wait(ctx, isSet)
	return err
}

// AutoResetEvent is a boolean [Event] that clears itself upon being consumed:
// a successful wait atomically resets the flag in the critical section that
// observed it, so each [AutoResetEvent.Set] releases at most one blocked
// handle, or stays signaled for the next one to arrive.
type AutoResetEvent struct {
	_e *Event[bool]
}

// NewAutoResetEvent creates an auto-reset event with the initial state.
func NewAutoResetEvent(initialState bool, opts ...*NewOption) *AutoResetEvent {
	return &AutoResetEvent{
		_e: New(initialState, opts...),
	}
}

// NewAutoResetEventFrom gives auto-reset behavior to an existing boolean
// event.
func NewAutoResetEventFrom(e *Event[bool]) *AutoResetEvent {
	return &AutoResetEvent{
		_e: e,
	}
}

// AsEvent returns the underlying boolean event.
func (e *AutoResetEvent) AsEvent() *Event[bool] {
	return e._e
}

// Clone returns a new handle to the same flag.
func (e *AutoResetEvent) Clone() *AutoResetEvent {
	return &AutoResetEvent{
		_e: e._e.Clone(),
	}
}

// Set signals the event. When no handle is blocked, the flag stays set for
// the next wait.
func (e *AutoResetEvent) Set() error {
	return e._e.Set(true)
}

// Reset re-arms the event.
func (e *AutoResetEvent) Reset() error {
	return e._e.Set(false)
}

// IsSet reports whether the event is signaled.
func (e *AutoResetEvent) IsSet() (bool, error) {
	return e._e.Value()
}

// Wait blocks until the event is signaled, then clears the flag atomically
// with observing it. Exactly one waiter consumes each signal.
func (e *AutoResetEvent) Wait(ctx context.Context) error {
	_, err := e._e.WaitReset(ctx, func() bool { return false }, isSet)
	return err
}

func isSet(v bool) bool { return v }

var (
	_ Signal = (*ManualResetEvent)(nil)
	_ Signal = (*AutoResetEvent)(nil)
)
