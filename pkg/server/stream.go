package server

import (
	"sync/atomic"

	"github.com/glint-ui/glint/pkg/protocol"
)

// Stream pushes incremental content into one target element. At most one
// stream may be open per (session, target) at a time; a second open on the
// same target fails with ErrStreamConflict until the first closes.
//
// Chunks carry a per-stream sequence number starting at 1, so the client
// can detect a chunk it missed even though the transport itself is
// ordered.
type Stream struct {
	session *Session
	target  string
	seq     atomic.Uint64
	closed  atomic.Bool
}

// OpenStream starts a stream into the target element. The target's
// current content is cleared and the element is marked streaming.
func (s *Session) OpenStream(target string) (*Stream, error) {
	if !s.IsLive() {
		return nil, ErrSessionClosed
	}

	s.streamMu.Lock()
	if _, exists := s.streams[target]; exists {
		s.streamMu.Unlock()
		return nil, ErrStreamConflict
	}
	st := &Stream{session: s, target: target}
	s.streams[target] = st
	s.streamMu.Unlock()

	s.channel.Send(protocol.NewUpdateText(target, ""))
	s.channel.Send(protocol.NewUpdateProps(target, map[string]string{"data-streaming": "true"}))

	s.logger.Debug("stream opened", "target", target)
	return st, nil
}

// WithStream opens a stream, runs fn with it, and closes it whether or
// not fn fails. This is the recommended shape for handler code: the
// stream can't leak past the handler.
func (s *Session) WithStream(target string, fn func(*Stream) error) error {
	st, err := s.OpenStream(target)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// Write appends one chunk of text to the stream's target.
func (st *Stream) Write(chunk string) error {
	if st.closed.Load() {
		return ErrStreamClosed
	}
	if !st.session.IsLive() {
		return ErrSessionClosed
	}

	st.session.channel.Send(
		protocol.NewAppendProp(st.target, "text", chunk, st.seq.Add(1)))
	return nil
}

// WriteNode appends a rendered node to the stream's target, for producers
// emitting structure rather than plain text.
func (st *Stream) WriteNode(node *protocol.Node) error {
	if st.closed.Load() {
		return ErrStreamClosed
	}
	if !st.session.IsLive() {
		return ErrSessionClosed
	}

	cmd := protocol.NewAppend(st.target, node)
	cmd.Seq = st.seq.Add(1)
	st.session.channel.Send(cmd)
	return nil
}

// Seq returns the number of chunks written so far.
func (st *Stream) Seq() uint64 {
	return st.seq.Load()
}

// Target returns the element id this stream writes into.
func (st *Stream) Target() string {
	return st.target
}

// Close ends the stream: clears the streaming marker and frees the target
// for a future stream. Safe to call more than once.
func (st *Stream) Close() {
	if !st.closed.CompareAndSwap(false, true) {
		return
	}

	s := st.session
	s.streamMu.Lock()
	if s.streams[st.target] == st {
		delete(s.streams, st.target)
	}
	s.streamMu.Unlock()

	s.channel.Send(protocol.NewUpdateProps(st.target, map[string]string{"data-streaming": "false"}))
	s.logger.Debug("stream closed", "target", st.target, "chunks", st.seq.Load())
}

// closeStreams force-closes every open stream. Called on navigation so a
// producer from the previous page can't keep writing into the new one.
func (s *Session) closeStreams() {
	s.streamMu.Lock()
	streams := make([]*Stream, 0, len(s.streams))
	for _, st := range s.streams {
		streams = append(streams, st)
	}
	s.streamMu.Unlock()

	for _, st := range streams {
		st.Close()
	}
}
