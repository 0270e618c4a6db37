package guard

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrPoisoned reports that a critical section on the cell was abandoned by
	// a panic, so the guarded value may be inconsistent.
	ErrPoisoned = errors.New("waitevent: lock poisoned")

	// ErrTimeout reports that the deadline elapsed before the awaited
	// predicate held.
	ErrTimeout = errors.New("waitevent: wait timed out")
)

// Cell is a mutex-guarded value of type T paired with a broadcast condition
// signal. Every successful mutation broadcasts before the critical section
// ends, so blocked waiters always re-evaluate their predicate against the
// latest value.
//
// A panic raised by a caller-supplied function while the lock is held poisons
// the cell: the panic is re-raised, blocked waiters fail with [ErrPoisoned],
// and so does every later acquisition until [Cell.ClearPoison] installs a
// replacement value.
type Cell[T any] struct {
	_cond     *broadcastCond
	_mu       sync.Mutex
	_value    T
	_poisoned bool
}

// NewCell creates a cell seeded with the initial value.
func NewCell[T any](initial T) *Cell[T] {
	c := &Cell[T]{
		_value: initial,
	}
	c._cond = newBroadcastCond(&c._mu)
	return c
}

// acquire takes the lock, failing when the cell is poisoned.
// On success the lock is held by the caller.
func (c *Cell[T]) acquire() error {
	c._mu.Lock()
	if c._poisoned {
		c._mu.Unlock()
		return ErrPoisoned
	}
	return nil
}

// release ends the critical section. When a panic is in flight, the cell is
// marked poisoned and all waiters are woken before the panic resumes.
// Must be used as `defer c.release()` to observe the panic.
func (c *Cell[T]) release() {
	if r := recover(); r != nil {
		c._poisoned = true
		c._cond.broadcast()
		c._mu.Unlock()
		panic(r)
	}
	c._mu.Unlock()
}

// Load returns a copy of the guarded value.
func (c *Cell[T]) Load() (T, error) {
	if err := c.acquire(); err != nil {
		var zero T
		return zero, err
	}
	defer c.release()

	return c._value, nil
}

// Store replaces the guarded value and wakes all blocked waiters.
func (c *Cell[T]) Store(v T) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	c._value = v
	c._cond.broadcast()
	return nil
}

// Wait blocks until pred holds for the guarded value, and returns the matched
// value. The predicate is re-evaluated after every wakeup; a wakeup without a
// state change never ends the wait by itself.
//
// The deadline of ctx bounds the block: expiry yields [ErrTimeout], explicit
// cancellation yields the context's own error.
func (c *Cell[T]) Wait(ctx context.Context, pred func(T) bool) (T, error) {
	return c.waitMatch(ctx, pred, nil)
}

// WaitReset behaves like [Cell.Wait], but once the predicate holds it
// replaces the guarded value with reset() in the same critical section that
// observed the match, then returns the pre-reset value. No other handle can
// observe the matched value between the test and the reset.
func (c *Cell[T]) WaitReset(ctx context.Context, reset func() T, pred func(T) bool) (T, error) {
	return c.waitMatch(ctx, pred, reset)
}

func (c *Cell[T]) waitMatch(ctx context.Context, pred func(T) bool, reset func() T) (T, error) {
	var zero T
	if err := c.acquire(); err != nil {
		return zero, err
	}
	defer c.release()

	done := ctx.Done()
	for !pred(c._value) {
		select {
		case <-done:
			return zero, waitErr(ctx)
		default:
		}
		if cont := c._cond.wait(done); !cont {
			return zero, waitErr(ctx)
		}
		if c._poisoned {
			return zero, ErrPoisoned
		}
	}

	matched := c._value
	if reset != nil {
		c._value = reset()
		c._cond.broadcast()
	}
	return matched, nil
}

// ClearPoison re-arms a poisoned cell with a replacement value, so that the
// inconsistent one can never be observed again. No-op when the cell is not
// poisoned.
func (c *Cell[T]) ClearPoison(v T) {
	c._mu.Lock()
	if c._poisoned {
		c._poisoned = false
		c._value = v
	}
	c._mu.Unlock()
}

// Poisoned reports whether a critical section on the cell was abandoned.
func (c *Cell[T]) Poisoned() bool {
	c._mu.Lock()
	defer c._mu.Unlock()
	return c._poisoned
}

func waitErr(ctx context.Context) error {
	if err := ctx.Err(); !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ErrTimeout
}
