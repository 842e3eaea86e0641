package server

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/glint-ui/glint/pkg/protocol"
)

// UpdateChannel serializes update commands onto a session's transport.
//
// Send calls are FIFO relative to all other Send calls made from the same
// logical call stack: each caller's commands arrive in the order it issued
// them. Commands from concurrently running handlers on the same session may
// interleave; the channel makes no global ordering promise across callers.
//
// Sends after the channel is closed are silently dropped: handler code
// finishing after a disconnect must not crash.
type UpdateChannel struct {
	mu        sync.Mutex // Serializes transport writes
	transport Transport
	seq       atomic.Uint64
	closed    atomic.Bool
	logger    *slog.Logger
	metrics   *Metrics
}

func newUpdateChannel(t Transport, logger *slog.Logger) *UpdateChannel {
	return &UpdateChannel{transport: t, logger: logger}
}

// Send enqueues exactly one update command onto the connection. A write
// error closes the channel; the session notices on its next read.
//
// The sequence number is assigned under the write lock so ChannelSeq
// matches wire order even across concurrent senders.
func (c *UpdateChannel) Send(cmd protocol.Command) {
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return
	}
	uf := &protocol.UpdateFrame{
		ChannelSeq: c.seq.Add(1),
		Command:    cmd,
	}
	c.writeLocked(protocol.NewFrame(protocol.FrameUpdate, protocol.EncodeUpdate(uf)))
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.CommandsSent.WithLabelValues(cmd.Kind.String()).Inc()
	}
}

// SendTree pushes a full rendered tree (initial load, navigation).
func (c *UpdateChannel) SendTree(tf *protocol.TreeFrame) {
	c.writeFrame(protocol.NewFrame(protocol.FrameTree, protocol.EncodeTree(tf)))
}

// SendHandshake sends the post-connect handshake frame.
func (c *UpdateChannel) SendHandshake(hs *protocol.HandshakeFrame) {
	c.writeFrame(protocol.NewFrame(protocol.FrameHandshake, protocol.EncodeHandshake(hs)))
}

// SendControl sends a control message (ping, pong, close).
func (c *UpdateChannel) SendControl(ct protocol.ControlType, data any) {
	c.writeFrame(protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(ct, data)))
}

// SendError sends an informational error frame.
func (c *UpdateChannel) SendError(code protocol.ErrorCode, message string) {
	c.writeFrame(protocol.NewFrame(protocol.FrameError,
		protocol.EncodeErrorMessage(protocol.NewError(code, message))))
}

// Seq returns the last channel sequence number issued.
func (c *UpdateChannel) Seq() uint64 {
	return c.seq.Load()
}

// Close marks the channel closed. Subsequent sends are dropped.
func (c *UpdateChannel) Close() {
	c.closed.Store(true)
}

// IsClosed reports whether the channel has been closed.
func (c *UpdateChannel) IsClosed() bool {
	return c.closed.Load()
}

func (c *UpdateChannel) writeFrame(f *protocol.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return
	}
	c.writeLocked(f)
}

func (c *UpdateChannel) writeLocked(f *protocol.Frame) {
	if c.transport == nil {
		c.logger.Warn("send with no transport attached")
		return
	}
	if len(f.Payload) > protocol.MaxPayloadSize {
		// The header's length field is 16 bits; an oversized payload
		// cannot be framed.
		c.logger.Error("frame exceeds max payload size, closing channel",
			"type", f.Type.String(), "size", len(f.Payload))
		c.closed.Store(true)
		return
	}
	if err := c.transport.WriteFrame(f); err != nil {
		c.logger.Error("write error", "error", err)
		c.closed.Store(true)
	}
}
