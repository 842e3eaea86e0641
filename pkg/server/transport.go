package server

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/glint-ui/glint/pkg/protocol"
)

// Transport abstracts the persistent connection a session writes frames to.
// The production implementation wraps a websocket connection; tests use a
// recording transport.
//
// WriteFrame must be safe for use by one caller at a time; the update
// channel serializes access.
type Transport interface {
	WriteFrame(f *protocol.Frame) error
	Close() error
}

// noopTransport discards every frame. Ephemeral sessions created for the
// initial HTTP render use it; nothing they send has anywhere to go yet.
type noopTransport struct{}

func (noopTransport) WriteFrame(*protocol.Frame) error { return nil }
func (noopTransport) Close() error                     { return nil }

// wsTransport adapts a gorilla websocket connection to Transport.
type wsTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func newWSTransport(conn *websocket.Conn, writeTimeout time.Duration) *wsTransport {
	return &wsTransport{conn: conn, writeTimeout: writeTimeout}
}

func (t *wsTransport) WriteFrame(f *protocol.Frame) error {
	if len(f.Payload) > protocol.MaxPayloadSize {
		return protocol.ErrFrameTooLarge
	}
	t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	return t.conn.WriteMessage(websocket.BinaryMessage, f.Encode())
}

func (t *wsTransport) Close() error {
	t.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return t.conn.Close()
}
