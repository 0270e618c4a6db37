package waitevent_test

import (
	"context"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
	"gotest.tools/v3/assert"

	"github.com/daichitakahashi/waitevent"
)

func TestManualResetEvent(t *testing.T) {
	t.Parallel()

	t.Run("signaled event releases all waiters", func(t *testing.T) {
		t.Parallel()

		ev := waitevent.NewManualResetEvent(false)
		assert.NilError(t, ev.Set())

		var eg errgroup.Group
		for i := 0; i < 10; i++ {
			handle := ev.Clone()
			eg.Go(func() error {
				ctx, cancel := context.WithTimeout(background, time.Second)
				defer cancel()
				return handle.Wait(ctx)
			})
		}
		assert.NilError(t, eg.Wait())

		// The flag stays set until explicit reset.
		set, err := ev.IsSet()
		assert.NilError(t, err)
		assert.Assert(t, set)
	})

	t.Run("reset re-arms the event", func(t *testing.T) {
		t.Parallel()

		ev := waitevent.NewManualResetEvent(true)
		assert.NilError(t, ev.Reset())

		ctx, cancel := context.WithTimeout(background, time.Millisecond*100)
		defer cancel()
		assert.ErrorIs(t, ev.Wait(ctx), waitevent.ErrTimeout)

		// The next set releases the waiter again.
		handle := ev.Clone()
		time.AfterFunc(time.Millisecond*100, func() {
			_ = handle.Set()
		})
		waitCtx, waitCancel := context.WithTimeout(background, time.Second)
		defer waitCancel()
		assert.NilError(t, ev.Wait(waitCtx))
	})
}

func TestAutoResetEvent(t *testing.T) {
	t.Parallel()

	t.Run("each set releases at most one waiter", func(t *testing.T) {
		t.Parallel()

		ev := waitevent.NewAutoResetEvent(true)

		// The first wait consumes the signal.
		ctx, cancel := context.WithTimeout(background, time.Second)
		defer cancel()
		assert.NilError(t, ev.Wait(ctx))

		set, err := ev.IsSet()
		assert.NilError(t, err)
		assert.Assert(t, !set)

		// The second wait times out without an intervening set.
		shortCtx, shortCancel := context.WithTimeout(background, time.Millisecond*100)
		defer shortCancel()
		assert.ErrorIs(t, ev.Wait(shortCtx), waitevent.ErrTimeout)
	})

	t.Run("set without a blocked waiter stays signaled", func(t *testing.T) {
		t.Parallel()

		ev := waitevent.NewAutoResetEvent(false)
		assert.NilError(t, ev.Set())
		assert.NilError(t, ev.Set()) // Signaled to signaled changes nothing.

		set, err := ev.IsSet()
		assert.NilError(t, err)
		assert.Assert(t, set)

		ctx, cancel := context.WithTimeout(background, time.Second)
		defer cancel()
		assert.NilError(t, ev.Wait(ctx))
	})

	t.Run("exactly one of concurrent waiters consumes the signal", func(t *testing.T) {
		t.Parallel()

		ev := waitevent.NewAutoResetEvent(false)

		results := make(chan error, 2)
		for i := 0; i < 2; i++ {
			handle := ev.Clone()
			go func() {
				ctx, cancel := context.WithTimeout(background, time.Millisecond*500)
				defer cancel()
				results <- handle.Wait(ctx)
			}()
		}

		time.Sleep(time.Millisecond * 100)
		assert.NilError(t, ev.Set())

		var succeeded, timedOut int
		for i := 0; i < 2; i++ {
			switch err := <-results; {
			case err == nil:
				succeeded++
			default:
				assert.ErrorIs(t, err, waitevent.ErrTimeout)
				timedOut++
			}
		}
		assert.Equal(t, succeeded, 1)
		assert.Equal(t, timedOut, 1)
	})
}

func TestBooleanEvent_Conversions(t *testing.T) {
	t.Parallel()

	ev := waitevent.New(true)

	// Manual- and auto-reset behavior can be layered over one shared flag.
	manual := waitevent.NewManualResetEventFrom(ev)
	auto := waitevent.NewAutoResetEventFrom(ev.Clone())

	ctx, cancel := context.WithTimeout(background, time.Second)
	defer cancel()
	assert.NilError(t, manual.Wait(ctx))

	// The manual wait left the flag set; the auto wait consumes it.
	assert.NilError(t, auto.Wait(ctx))
	set, err := manual.IsSet()
	assert.NilError(t, err)
	assert.Assert(t, !set)

	assert.Equal(t, manual.AsEvent(), ev)

	// A wait on the drained flag blocks.
	blocked := asyncResult(func() error {
		waitCtx, waitCancel := context.WithTimeout(background, time.Millisecond*300)
		defer waitCancel()
		return manual.Wait(waitCtx)
	})
	select {
	case err := <-blocked:
		t.Fatalf("wait returned early: %v", err)
	case <-time.After(time.Millisecond * 100):
	}
	assert.NilError(t, auto.Set())
	assert.NilError(t, <-blocked)
}
