package server

import (
	"log/slog"
	"runtime/debug"

	"github.com/glint-ui/glint/pkg/pages"
	"github.com/glint-ui/glint/pkg/protocol"
)

// Navigator moves a session between routes without tearing the connection
// down. The session's state map survives navigation; its callbacks and
// open streams do not, so nothing from the previous page can fire against
// the new one.
//
// Routes resolve by exact match only. An unknown route fails with
// ErrUnknownRoute and leaves the session exactly where it was: same
// route, same callbacks, same streams.
type Navigator struct {
	pages   *pages.Registry
	logger  *slog.Logger
	metrics *Metrics
}

// NewNavigator creates a navigator over the given page registry.
func NewNavigator(reg *pages.Registry, logger *slog.Logger, metrics *Metrics) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{pages: reg, logger: logger, metrics: metrics}
}

// Navigate renders the page at route into the session and pushes the new
// tree. Resolution happens before any teardown, so a bad route is a pure
// no-op on the session.
func (n *Navigator) Navigate(s *Session, route string) error {
	if !s.IsLive() {
		return ErrSessionClosed
	}

	page, ok := n.pages.Lookup(route)
	if !ok {
		n.logger.Warn("navigation to unknown route",
			"session_id", s.ID, "route", route)
		return ErrUnknownRoute
	}

	prev := s.CurrentRoute()
	s.closeStreams()
	s.callbacks.Clear()
	s.setRoute(route)

	root, err := n.render(s, page)
	if err != nil {
		s.setRoute(prev)
		n.logger.Error("page render failed",
			"session_id", s.ID, "route", route, "error", err)
		sendErrorToast(s, "Something went wrong")
		return err
	}

	s.Channel().SendTree(&protocol.TreeFrame{Route: route, Root: root})

	if n.metrics != nil {
		n.metrics.Navigations.Inc()
	}
	n.logger.Debug("navigated", "session_id", s.ID, "from", prev, "to", route)
	return nil
}

// Render re-renders the session's current route and pushes the tree.
// Used for the initial page load after handshake.
func (n *Navigator) Render(s *Session) error {
	return n.Navigate(s, s.CurrentRoute())
}

// RenderRoute renders the page at route against the session and returns
// the tree without pushing anything or touching navigation state. The
// HTTP layer uses it to answer the initial page GET before the websocket
// connects.
func (n *Navigator) RenderRoute(s *Session, route string) (*protocol.Node, error) {
	page, ok := n.pages.Lookup(route)
	if !ok {
		return nil, ErrUnknownRoute
	}
	return n.render(s, page)
}

// render runs the page function with panic recovery. Page code is user
// code and gets the same containment as event handlers.
func (n *Navigator) render(s *Session, page pages.PageFunc) (root *protocol.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{SessionID: s.ID, Panic: r, Stack: debug.Stack()}
		}
	}()
	return page(s), nil
}
