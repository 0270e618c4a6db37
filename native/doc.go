// Package native implements the boolean event contract of the waitevent
// package over operating-system event objects: eventfd on Linux and Win32
// event objects on Windows. Use it where interop with native wait primitives
// is required; the OS guarantees the atomic check-and-autoclear semantics, so
// no additional locking happens in this backend.
//
// Unlike the mutex-backed events, native events own an OS handle and must be
// closed. Clones share the handle; the last Close releases it.
package native
