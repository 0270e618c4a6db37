// Package test holds the conformance suite shared by the event backends:
// every Signal implementation, mutex-backed or OS-backed, must show the same
// observable behavior.
package test

import (
	"context"
	"testing"
	"time"

	"github.com/daichitakahashi/waitevent"
)

// Backend provides the boolean event constructors of one implementation
// family.
type Backend struct {
	Name   string
	Manual func(t *testing.T, initialState bool) waitevent.Signal
	Auto   func(t *testing.T, initialState bool) waitevent.Signal
}

// Context creates a generously bounded context for waits expected to succeed.
func Context(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	t.Cleanup(cancel)
	return ctx
}

// ShortContext creates a tightly bounded context for waits expected to time
// out.
func ShortContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*100)
	t.Cleanup(cancel)
	return ctx
}
