package server

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/glint-ui/glint/pkg/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingTransport captures every frame written to it.
type recordingTransport struct {
	mu     sync.Mutex
	frames []*protocol.Frame
	closed bool

	// failWrites makes every WriteFrame return an error.
	failWrites bool
}

type errWriteFailed struct{}

func (errWriteFailed) Error() string { return "write failed" }

func (t *recordingTransport) WriteFrame(f *protocol.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWrites {
		return errWriteFailed{}
	}
	t.frames = append(t.frames, f)
	return nil
}

func (t *recordingTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *recordingTransport) frameCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames)
}

// commands decodes every update frame recorded so far, in order.
func (t *recordingTransport) commands(tb testing.TB) []protocol.Command {
	tb.Helper()
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []protocol.Command
	for _, f := range t.frames {
		if f.Type != protocol.FrameUpdate {
			continue
		}
		uf, err := protocol.DecodeUpdate(f.Payload)
		if err != nil {
			tb.Fatalf("DecodeUpdate: %v", err)
		}
		out = append(out, uf.Command)
	}
	return out
}

// framesOfType returns recorded frames of one type.
func (t *recordingTransport) framesOfType(ft protocol.FrameType) []*protocol.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []*protocol.Frame
	for _, f := range t.frames {
		if f.Type == ft {
			out = append(out, f)
		}
	}
	return out
}

// newTestSession builds a live session over a recording transport.
func newTestSession(tb testing.TB) (*Session, *recordingTransport) {
	tb.Helper()
	rt := &recordingTransport{}
	s := NewSession(rt, DefaultSessionConfig(), testLogger())
	tb.Cleanup(s.Close)
	return s, rt
}
