package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/glint-ui/glint/pkg/protocol"
)

// handleWS upgrades the HTTP request and runs the session until the
// connection drops.
func (srv *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		srv.logger.Error("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	cfg := srv.config.SessionConfig
	transport := newWSTransport(conn, cfg.WriteTimeout)
	s := NewSession(transport, cfg, srv.logger)
	s.channel.metrics = srv.metrics

	route := r.URL.Query().Get("route")
	if route == "" {
		route = "/"
	}
	s.setRoute(route)

	srv.broadcaster.Add(s)
	s.setOnClose(func(closed *Session) {
		srv.broadcaster.Remove(closed.ID)
	})
	if srv.metrics != nil {
		srv.metrics.SessionsTotal.Inc()
	}
	defer s.Close()

	s.logger.Info("session connected", "remote", r.RemoteAddr, "route", route)

	s.channel.SendHandshake(&protocol.HandshakeFrame{SessionID: s.ID, Route: route})
	if err := srv.navigator.Render(s); err != nil {
		s.logger.Error("initial render failed", "route", route, "error", err)
		return
	}

	stopHeartbeat := srv.startHeartbeat(s)
	defer stopHeartbeat()

	srv.readLoop(s, conn)
}

// readLoop consumes inbound frames until the connection errors or the
// session closes.
func (srv *Server) readLoop(s *Session, conn *websocket.Conn) {
	cfg := s.config
	conn.SetReadLimit(cfg.MaxMessageSize)

	for {
		conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))

		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			s.logger.Warn("bad frame", "error", err)
			s.channel.SendError(protocol.ErrCodeProtocol, "malformed frame")
			continue
		}

		if err := srv.handleFrame(s, frame); err != nil {
			if errors.Is(err, ErrSessionClosed) {
				return
			}
			// Acceptance failures were already reported to the client.
		}
	}
}

func (srv *Server) handleFrame(s *Session, frame *protocol.Frame) error {
	switch frame.Type {
	case protocol.FrameEvent:
		ev, err := protocol.DecodeEvent(frame.Payload)
		if err != nil {
			s.logger.Warn("bad event payload", "error", err)
			s.channel.SendError(protocol.ErrCodeProtocol, "malformed event")
			return nil
		}
		return srv.dispatcher.Dispatch(s, ev)

	case protocol.FrameHandshake:
		// A client-initiated handshake mid-session is a navigation
		// request.
		hs, err := protocol.DecodeHandshake(frame.Payload)
		if err != nil {
			s.logger.Warn("bad handshake payload", "error", err)
			s.channel.SendError(protocol.ErrCodeProtocol, "malformed handshake")
			return nil
		}
		if err := srv.navigator.Navigate(s, hs.Route); err != nil {
			if errors.Is(err, ErrUnknownRoute) {
				s.channel.SendError(protocol.ErrCodeProtocol, "unknown route "+hs.Route)
				return nil
			}
			return err
		}
		return nil

	case protocol.FrameControl:
		return srv.handleControl(s, frame.Payload)

	default:
		s.logger.Warn("unexpected frame type", "type", frame.Type.String())
		s.channel.SendError(protocol.ErrCodeProtocol, "unexpected frame type")
		return nil
	}
}

func (srv *Server) handleControl(s *Session, payload []byte) error {
	ct, data, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Warn("bad control payload", "error", err)
		return nil
	}

	switch ct {
	case protocol.ControlPing:
		if ping, ok := data.(*protocol.PingPong); ok {
			s.channel.SendControl(protocol.NewPong(ping.Timestamp))
		}
		s.touch()
	case protocol.ControlPong:
		s.touch()
	case protocol.ControlClose:
		s.logger.Info("client requested close")
		return ErrSessionClosed
	}
	return nil
}

// startHeartbeat pings the client on the configured interval. The read
// deadline does the actual liveness enforcement; the ping just provokes
// traffic on an otherwise idle connection.
func (srv *Server) startHeartbeat(s *Session) func() {
	interval := s.config.HeartbeatInterval
	if interval <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-s.Done():
				return
			case <-ticker.C:
				s.channel.SendControl(protocol.NewPing(uint64(time.Now().UnixMilli())))
			}
		}
	}()
	return func() { ticker.Stop() }
}
