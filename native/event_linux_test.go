package native_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/daichitakahashi/waitevent"
	"github.com/daichitakahashi/waitevent/native"
)

var background = context.Background()

func TestManualResetEvent(t *testing.T) {
	t.Parallel()

	ev, err := native.NewManualResetEvent(false)
	assert.NilError(t, err)
	t.Cleanup(func() {
		_ = ev.Close()
	})

	// Not signaled yet.
	ctx, cancel := context.WithTimeout(background, time.Millisecond*100)
	defer cancel()
	assert.ErrorIs(t, ev.Wait(ctx), waitevent.ErrTimeout)

	// Signaled: consecutive waits succeed without reset, on any clone.
	assert.NilError(t, ev.Set())
	handle := ev.Clone()
	t.Cleanup(func() {
		_ = handle.Close()
	})
	for i := 0; i < 2; i++ {
		waitCtx, waitCancel := context.WithTimeout(background, time.Second)
		assert.NilError(t, ev.Wait(waitCtx))
		assert.NilError(t, handle.Wait(waitCtx))
		waitCancel()
	}

	// Reset re-arms.
	assert.NilError(t, handle.Reset())
	resetCtx, resetCancel := context.WithTimeout(background, time.Millisecond*100)
	defer resetCancel()
	assert.ErrorIs(t, ev.Wait(resetCtx), waitevent.ErrTimeout)
}

func TestAutoResetEvent(t *testing.T) {
	t.Parallel()

	t.Run("each set releases at most one waiter", func(t *testing.T) {
		t.Parallel()

		ev, err := native.NewAutoResetEvent(true)
		assert.NilError(t, err)
		t.Cleanup(func() {
			_ = ev.Close()
		})

		ctx, cancel := context.WithTimeout(background, time.Second)
		defer cancel()
		assert.NilError(t, ev.Wait(ctx))

		// The signal was consumed.
		shortCtx, shortCancel := context.WithTimeout(background, time.Millisecond*100)
		defer shortCancel()
		assert.ErrorIs(t, ev.Wait(shortCtx), waitevent.ErrTimeout)
	})

	t.Run("repeated sets while signaled collapse into one wakeup", func(t *testing.T) {
		t.Parallel()

		ev, err := native.NewAutoResetEvent(false)
		assert.NilError(t, err)
		t.Cleanup(func() {
			_ = ev.Close()
		})

		assert.NilError(t, ev.Set())
		assert.NilError(t, ev.Set())

		ctx, cancel := context.WithTimeout(background, time.Second)
		defer cancel()
		assert.NilError(t, ev.Wait(ctx))

		shortCtx, shortCancel := context.WithTimeout(background, time.Millisecond*100)
		defer shortCancel()
		assert.ErrorIs(t, ev.Wait(shortCtx), waitevent.ErrTimeout)
	})

	t.Run("exactly one of concurrent waiters consumes the signal", func(t *testing.T) {
		t.Parallel()

		ev, err := native.NewAutoResetEvent(false)
		assert.NilError(t, err)
		t.Cleanup(func() {
			_ = ev.Close()
		})

		results := make(chan error, 2)
		for i := 0; i < 2; i++ {
			handle := ev.Clone()
			go func() {
				defer func() {
					_ = handle.Close()
				}()
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

func TestEvent_Close(t *testing.T) {
	t.Parallel()

	ev, err := native.NewManualResetEvent(false)
	assert.NilError(t, err)
	handle := ev.Clone()

	// The OS object survives until the last handle is closed.
	assert.NilError(t, ev.Close())
	assert.NilError(t, handle.Set())
	assert.NilError(t, handle.Close())

	// Double close of one handle fails.
	var osErr *waitevent.OSError
	assert.Assert(t, errors.As(handle.Close(), &osErr))
	assert.Assert(t, osErr.Code != 0)
}

func TestEvent_CanceledContext(t *testing.T) {
	t.Parallel()

	ev, err := native.NewManualResetEvent(false)
	assert.NilError(t, err)
	t.Cleanup(func() {
		_ = ev.Close()
	})

	ctx, cancel := context.WithCancel(background)
	cancel()
	assert.ErrorIs(t, ev.Wait(ctx), context.Canceled)
}
