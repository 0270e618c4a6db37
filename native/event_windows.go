package native

import (
	"context"
	"errors"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/windows"

	"github.com/daichitakahashi/waitevent"
)

// event is the OS object shared by clones of one handle family.
// The manual/auto-reset discipline is fixed at creation; the kernel performs
// the atomic signaled-check-and-autoclear, so waits map directly to
// WaitForSingleObject.
type event struct {
	_h   windows.Handle
	refs atomic.Int32
}

func newEvent(manualReset, initialState bool) (*event, error) {
	var manual, initial uint32
	if manualReset {
		manual = 1
	}
	if initialState {
		initial = 1
	}
	h, err := windows.CreateEvent(nil, manual, initial, nil)
	if err != nil {
		return nil, osError("CreateEvent", err)
	}

	ev := &event{_h: h}
	ev.refs.Store(1)
	return ev, nil
}

func (e *event) set() error {
	if err := windows.SetEvent(e._h); err != nil {
		return osError("SetEvent", err)
	}
	return nil
}

func (e *event) reset() error {
	if err := windows.ResetEvent(e._h); err != nil {
		return osError("ResetEvent", err)
	}
	return nil
}

func (e *event) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return waitevent.ErrTimeout
		}
		return err
	}

	timeout := uint32(windows.INFINITE)
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		// Round up, not to return before the deadline.
		timeout = uint32((remaining + time.Millisecond - 1) / time.Millisecond)
	}

	ret, err := windows.WaitForSingleObject(e._h, timeout)
	switch ret {
	case windows.WAIT_OBJECT_0:
		return nil
	case uint32(windows.WAIT_TIMEOUT):
		return waitevent.ErrTimeout
	default:
		return osError("WaitForSingleObject", err)
	}
}

func (e *event) close() error {
	if e.refs.Add(-1) > 0 {
		return nil
	}
	if err := windows.CloseHandle(e._h); err != nil {
		return osError("CloseHandle", err)
	}
	return nil
}

func errClosed() error {
	return osError("use of closed event", windows.ERROR_INVALID_HANDLE)
}

func osError(op string, err error) error {
	var code int
	var errno syscall.Errno
	if errors.As(err, &errno) {
		code = int(errno)
	}
	return &waitevent.OSError{
		Code: code,
		Msg:  op + ": " + err.Error(),
		Err:  err,
	}
}
