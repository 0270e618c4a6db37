//go:build linux || windows

package native

import (
	"context"
	"sync/atomic"

	"github.com/daichitakahashi/waitevent"
)

// Event is the behavior shared by [ManualResetEvent] and [AutoResetEvent].
// The zero value is not usable; create events with their constructors.
type Event struct {
	_ev     *event
	_closed atomic.Bool
}

// Set signals the event.
func (e *Event) Set() error {
	return e._ev.set()
}

// Reset re-arms the event to the non-signaled state.
func (e *Event) Reset() error {
	return e._ev.reset()
}

// Wait blocks until the event is signaled, bounded by the deadline of ctx.
// Expiry yields [waitevent.ErrTimeout], explicit cancellation the context's
// own error, and a failed platform call an [*waitevent.OSError].
func (e *Event) Wait(ctx context.Context) error {
	return e._ev.wait(ctx)
}

// Close releases the handle. The underlying OS object is destroyed when the
// last handle sharing it is closed. Closing a handle twice fails.
func (e *Event) Close() error {
	if !e._closed.CompareAndSwap(false, true) {
		return errClosed()
	}
	return e._ev.close()
}

func (e *Event) clone() *Event {
	e._ev.refs.Add(1)
	return &Event{_ev: e._ev}
}

// ManualResetEvent is an OS-backed event that stays signaled until Reset.
type ManualResetEvent struct {
	*Event
}

// NewManualResetEvent creates a manual-reset event with the initial state.
func NewManualResetEvent(initialState bool) (*ManualResetEvent, error) {
	ev, err := newEvent(true, initialState)
	if err != nil {
		return nil, err
	}
	return &ManualResetEvent{&Event{_ev: ev}}, nil
}

// Clone returns a new handle sharing the OS object.
func (e *ManualResetEvent) Clone() *ManualResetEvent {
	return &ManualResetEvent{e.Event.clone()}
}

// AutoResetEvent is an OS-backed event that the OS atomically clears upon
// releasing one waiter.
type AutoResetEvent struct {
	*Event
}

// NewAutoResetEvent creates an auto-reset event with the initial state.
func NewAutoResetEvent(initialState bool) (*AutoResetEvent, error) {
	ev, err := newEvent(false, initialState)
	if err != nil {
		return nil, err
	}
	return &AutoResetEvent{&Event{_ev: ev}}, nil
}

// Clone returns a new handle sharing the OS object.
func (e *AutoResetEvent) Clone() *AutoResetEvent {
	return &AutoResetEvent{e.Event.clone()}
}

var (
	_ waitevent.Signal = (*ManualResetEvent)(nil)
	_ waitevent.Signal = (*AutoResetEvent)(nil)
)
