package native

import (
	"context"
	"encoding/binary"
	"errors"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/daichitakahashi/waitevent"
)

// event is the OS object shared by clones of one handle family.
// Signaled means the eventfd counter is above zero. A manual-reset wait only
// polls for readability, so the counter survives it; an auto-reset wait
// consumes the whole counter with a read, which is how repeated sets while
// signaled collapse into one wakeup.
type event struct {
	fd     int
	manual bool
	refs   atomic.Int32
}

func newEvent(manualReset, initialState bool) (*event, error) {
	var initval uint
	if initialState {
		initval = 1
	}
	fd, err := unix.Eventfd(initval, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, osError("eventfd", err)
	}

	ev := &event{
		fd:     fd,
		manual: manualReset,
	}
	ev.refs.Store(1)
	return ev, nil
}

func (e *event) set() error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	for {
		_, err := unix.Write(e.fd, buf[:])
		switch err {
		case nil:
			return nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			// Counter saturated; the event is already signaled.
			return nil
		default:
			return osError("write", err)
		}
	}
}

func (e *event) reset() error {
	var buf [8]byte
	for {
		_, err := unix.Read(e.fd, buf[:])
		switch err {
		case nil, unix.EAGAIN: // Read clears the whole counter.
			return nil
		case unix.EINTR:
			continue
		default:
			return osError("read", err)
		}
	}
}

func (e *event) wait(ctx context.Context) error {
	deadline, hasDeadline := ctx.Deadline()
	for {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return waitevent.ErrTimeout
			}
			return err
		}

		timeout := -1 // Block indefinitely.
		if hasDeadline {
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			// Round up, not to return before the deadline.
			timeout = int((remaining + time.Millisecond - 1) / time.Millisecond)
		}

		fds := []unix.PollFd{{Fd: int32(e.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, timeout)
		if err == unix.EINTR {
			continue // Retry with recomputed remaining time.
		}
		if err != nil {
			return osError("poll", err)
		}
		if n == 0 {
			return waitevent.ErrTimeout
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			// POLLNVAL or POLLERR: the handle is closed or broken.
			return osError("poll", unix.EBADF)
		}

		if e.manual {
			return nil
		}

		// Consume the signal. Losing the race to another waiter means going
		// back to sleep.
		var buf [8]byte
		_, err = unix.Read(e.fd, buf[:])
		switch err {
		case nil:
			return nil
		case unix.EAGAIN, unix.EINTR:
			continue
		default:
			return osError("read", err)
		}
	}
}

func (e *event) close() error {
	if e.refs.Add(-1) > 0 {
		return nil
	}
	if err := unix.Close(e.fd); err != nil {
		return osError("close", err)
	}
	return nil
}

func errClosed() error {
	return osError("use of closed event", unix.EBADF)
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
