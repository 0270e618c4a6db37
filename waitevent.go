// Package waitevent provides a mutex-guarded value of arbitrary type, paired
// with a condition signal, that lets goroutines block until the value
// satisfies a predicate and optionally consume the value upon observing it.
//
// The generic [Event] is the core. [ManualResetEvent] and [AutoResetEvent]
// are its boolean specializations, and the native subpackage implements the
// same boolean contract over operating-system event objects.
package waitevent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/option"

	"github.com/daichitakahashi/waitevent/internal/guard"
	"github.com/daichitakahashi/waitevent/journal"
)

// Event is a handle to one guarded value of type T.
// To share the value between goroutines, distribute clones of the event:
// every clone reads, mutates and waits on the same value with equal rights,
// and the value lives as long as any handle does.
//
//	ev := waitevent.New(0)
//	handle := ev.Clone()
//
//	go func() {
//		for i := 1; i <= 3; i++ {
//			_ = handle.Set(i)
//		}
//	}()
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
//	defer cancel()
//	v, err := ev.Wait(ctx, func(i int) bool { return i == 3 })
type Event[T any] struct {
	_cell    *guard.Cell[T]
	_journal *journal.RecordStore[journal.TransitionRecord]
	name     string
	handleID string
}

type (
	// NewOption represents option for [New].
	NewOption struct {
		option.Interface
	}
	identOptionName    struct{}
	identOptionJournal struct{}
)

// WithName specifies the name of the event, used as the record key in the
// journal. In default, a generated UUID is used.
func WithName(name string) *NewOption {
	return &NewOption{
		Interface: option.New(identOptionName{}, name),
	}
}

// WithJournal enables journaling of the event's transitions on s.
// Journal failures are surfaced on the erroring operation's return value,
// never swallowed.
func WithJournal(s *journal.Store) *NewOption {
	return &NewOption{
		Interface: option.New(identOptionJournal{}, s),
	}
}

// New creates an event holding the initial value.
func New[T any](initial T, opts ...*NewOption) *Event[T] {
	e := &Event[T]{
		_cell:    guard.NewCell(initial),
		name:     uuid.NewString(),
		handleID: uuid.NewString(),
	}

	// Apply options.
	for _, opt := range opts {
		switch opt.Ident() {
		case identOptionName{}:
			e.name = opt.Value().(string)
		case identOptionJournal{}:
			e._journal = opt.Value().(*journal.Store).Transitions()
		}
	}
	return e
}

// Clone returns a new handle to the same guarded value.
// The clone journals under its own handle ID, so transitions of cooperating
// goroutines stay distinguishable.
func (e *Event[T]) Clone() *Event[T] {
	return &Event[T]{
		_cell:    e._cell,
		_journal: e._journal,
		name:     e.name,
		handleID: uuid.NewString(),
	}
}

// Set replaces the guarded value and wakes all handles blocked in [Event.Wait]
// or [Event.WaitReset], each of which re-checks its own predicate.
func (e *Event[T]) Set(v T) error {
	if err := e._cell.Store(v); err != nil {
		return err
	}
	return e.record(journal.TransitionSet, fmt.Sprint(v))
}

// Value returns a copy of the current value.
func (e *Event[T]) Value() (T, error) {
	return e._cell.Load()
}

// Wait blocks until pred holds for the guarded value, and returns the matched
// value. The value is observed at least as recent as any [Event.Set] completed
// before the check.
//
// The deadline of ctx bounds the wait: expiry yields [ErrTimeout], explicit
// cancellation yields the context's own error.
func (e *Event[T]) Wait(ctx context.Context, pred func(T) bool) (T, error) {
	var zero T
	if err := e.record(journal.TransitionWait, ""); err != nil {
		return zero, err
	}

	v, err := e._cell.Wait(ctx, pred)
	if err != nil {
		return zero, e.waitFailure(err)
	}
	return v, e.record(journal.TransitionMatched, fmt.Sprint(v))
}

// WaitReset behaves like [Event.Wait], but once the predicate holds it
// atomically replaces the value with reset() in the same critical section
// that observed the match, then returns the pre-reset value. No other handle
// can observe the matched value between the test and the reset.
func (e *Event[T]) WaitReset(ctx context.Context, reset func() T, pred func(T) bool) (T, error) {
	var zero T
	if err := e.record(journal.TransitionWait, ""); err != nil {
		return zero, err
	}

	var rv T
	v, err := e._cell.WaitReset(ctx, func() T {
		rv = reset()
		return rv
	}, pred)
	if err != nil {
		return zero, e.waitFailure(err)
	}
	if err := e.record(journal.TransitionMatched, fmt.Sprint(v)); err != nil {
		return v, err
	}
	return v, e.record(journal.TransitionReset, fmt.Sprint(rv))
}

// ClearPoison re-arms a poisoned event with a replacement value. The
// inconsistent value left by the abandoned critical section can never be
// observed again. No-op when the event is not poisoned.
func (e *Event[T]) ClearPoison(v T) error {
	e._cell.ClearPoison(v)
	return e.record(journal.TransitionCleared, fmt.Sprint(v))
}

// Poisoned reports whether a critical section on the event was abandoned.
func (e *Event[T]) Poisoned() bool {
	return e._cell.Poisoned()
}

func (e *Event[T]) waitFailure(werr error) error {
	switch {
	case errors.Is(werr, ErrTimeout):
		if err := e.record(journal.TransitionTimeout, ""); err != nil {
			return err
		}
	case errors.Is(werr, ErrPoisoned):
		if err := e.record(journal.TransitionPoisoned, ""); err != nil {
			return err
		}
	}
	return werr
}

func (e *Event[T]) record(tr journal.Transition, value string) error {
	if e._journal == nil {
		return nil
	}
	return e._journal.Put(e.name, func(r *journal.TransitionRecord, _ bool) {
		r.Logs = append(r.Logs, journal.TransitionLog{
			Transition: tr,
			Operator:   e.handleID,
			Value:      value,
			Timestamp:  time.Now().UnixNano(),
		})
	})
}
