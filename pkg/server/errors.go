package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for runtime error conditions.
var (
	// ErrSessionClosed is returned when an operation is attempted on a
	// session whose connection has gone away.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrStaleCallback is returned when a dispatched callback id is not
	// registered, typically because the element that referenced it has
	// been removed.
	ErrStaleCallback = errors.New("server: stale callback")

	// ErrUnknownRoute is returned by Navigate for a route no page
	// function is registered for.
	ErrUnknownRoute = errors.New("server: unknown route")

	// ErrStreamConflict is returned when a stream is opened on a target
	// that already has an open stream for the same session.
	ErrStreamConflict = errors.New("server: stream already open on target")

	// ErrStreamClosed is returned by a write on a stream that has been
	// closed.
	ErrStreamClosed = errors.New("server: stream closed")

	// ErrEventQueueFull is returned when the in-flight dispatch limit is
	// reached and an inbound event is dropped.
	ErrEventQueueFull = errors.New("server: event queue full")

	// ErrNoTransport is returned when a session has no transport attached.
	ErrNoTransport = errors.New("server: no transport")
)

// HandlerError wraps a failure inside application handler code: either a
// returned error or a recovered panic. It is caught at the dispatch
// boundary and never unwinds into the transport loops.
type HandlerError struct {
	SessionID  string
	CallbackID string
	Err        error // Non-nil when the handler returned an error
	Panic      any   // Non-nil when the handler panicked
	Stack      []byte
}

// Error returns the error message with dispatch context.
func (e *HandlerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("server: handler panic in session %s, callback %s: %v",
			e.SessionID, e.CallbackID, e.Panic)
	}
	return fmt.Sprintf("server: handler failed in session %s, callback %s: %v",
		e.SessionID, e.CallbackID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *HandlerError) Unwrap() error {
	return e.Err
}
