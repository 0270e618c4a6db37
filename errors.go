package waitevent

import (
	"fmt"

	"github.com/daichitakahashi/waitevent/internal/guard"
)

var (
	// ErrPoisoned reports that a critical section on the event was abandoned
	// by a panic, so the guarded value may be inconsistent. The error is
	// sticky: every operation keeps failing until [Event.ClearPoison]
	// installs a replacement value.
	ErrPoisoned = guard.ErrPoisoned

	// ErrTimeout reports that a wait's deadline elapsed before the awaited
	// predicate held. Both the mutex-backed and the native backend translate
	// their timeout condition into this error.
	ErrTimeout = guard.ErrTimeout
)

// OSError reports a failed call into the platform's event API, raised by the
// native backend. Code carries the platform error number: errno on Unix,
// Win32 error code on Windows.
type OSError struct {
	Code int
	Msg  string
	Err  error
}

func (e *OSError) Error() string {
	return fmt.Sprintf("waitevent: os error %d: %s", e.Code, e.Msg)
}

func (e *OSError) Unwrap() error {
	return e.Err
}
