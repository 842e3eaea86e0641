// Package uitest provides helpers for testing page functions and event
// handlers without a browser: an in-memory transport that records every
// frame a session sends, plus decoders for asserting on the result.
package uitest

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/glint-ui/glint/pkg/protocol"
	"github.com/glint-ui/glint/pkg/server"
)

// RecordingTransport implements server.Transport and keeps every written
// frame in memory.
type RecordingTransport struct {
	mu     sync.Mutex
	frames []*protocol.Frame
	closed bool
}

// NewRecordingTransport creates an empty recording transport.
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{}
}

// WriteFrame records the frame.
func (t *RecordingTransport) WriteFrame(f *protocol.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, f)
	return nil
}

// Close marks the transport closed. Recorded frames stay readable.
func (t *RecordingTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Closed reports whether Close was called.
func (t *RecordingTransport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Frames returns a copy of every recorded frame, in write order.
func (t *RecordingTransport) Frames() []*protocol.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*protocol.Frame, len(t.frames))
	copy(out, t.frames)
	return out
}

// Reset discards recorded frames, for tests asserting on one phase at a
// time.
func (t *RecordingTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = nil
}

// Commands decodes every recorded update frame, in order.
func (t *RecordingTransport) Commands(tb testing.TB) []protocol.Command {
	tb.Helper()
	var out []protocol.Command
	for _, f := range t.Frames() {
		if f.Type != protocol.FrameUpdate {
			continue
		}
		uf, err := protocol.DecodeUpdate(f.Payload)
		if err != nil {
			tb.Fatalf("uitest: DecodeUpdate: %v", err)
		}
		out = append(out, uf.Command)
	}
	return out
}

// CommandsFor filters Commands down to those addressing one target.
func (t *RecordingTransport) CommandsFor(tb testing.TB, target string) []protocol.Command {
	tb.Helper()
	var out []protocol.Command
	for _, cmd := range t.Commands(tb) {
		if cmd.Target == target {
			out = append(out, cmd)
		}
	}
	return out
}

// Trees decodes every recorded tree frame, in order.
func (t *RecordingTransport) Trees(tb testing.TB) []*protocol.TreeFrame {
	tb.Helper()
	var out []*protocol.TreeFrame
	for _, f := range t.Frames() {
		if f.Type != protocol.FrameTree {
			continue
		}
		tf, err := protocol.DecodeTree(f.Payload)
		if err != nil {
			tb.Fatalf("uitest: DecodeTree: %v", err)
		}
		out = append(out, tf)
	}
	return out
}

// Errors decodes every recorded error frame, in order.
func (t *RecordingTransport) Errors(tb testing.TB) []*protocol.ErrorMessage {
	tb.Helper()
	var out []*protocol.ErrorMessage
	for _, f := range t.Frames() {
		if f.Type != protocol.FrameError {
			continue
		}
		em, err := protocol.DecodeErrorMessage(f.Payload)
		if err != nil {
			tb.Fatalf("uitest: DecodeErrorMessage: %v", err)
		}
		out = append(out, em)
	}
	return out
}

// Fire dispatches a synthetic client event against the session and waits
// for the handler to finish, so commands are recorded by the time it
// returns. The returned error is the dispatch acceptance error
// (server.ErrStaleCallback and friends), not the handler's.
func Fire(tb testing.TB, s *server.Session, callbackID string, props map[string]any) error {
	tb.Helper()
	d := server.NewDispatcher(discardLogger(), nil)
	err := d.Dispatch(s, &protocol.EventMessage{
		CallbackID: callbackID,
		Props:      props,
	})
	s.WaitIdle()
	return err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewSession creates a live session over a fresh recording transport. The
// session is closed automatically when the test finishes.
func NewSession(tb testing.TB) (*server.Session, *RecordingTransport) {
	tb.Helper()
	rt := NewRecordingTransport()
	s := server.NewSession(rt, nil, discardLogger())
	tb.Cleanup(s.Close)
	return s, rt
}
