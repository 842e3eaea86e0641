package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/glint-ui/glint/pkg/protocol"
	"github.com/glint-ui/glint/pkg/render"
)

// handlePage answers the initial page GET. The default response is an
// HTML shell containing a static render of the page; `?format=tree`
// returns the tree as JSON instead, for clients that build the DOM
// themselves. Either way the snapshot is inert until the websocket
// connects and the runtime re-renders with live callback bindings.
func (srv *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Path

	// An ephemeral session renders the anonymous first paint; its
	// callback ids are never dispatched to.
	s := NewSession(noopTransport{}, srv.config.SessionConfig, srv.logger)
	defer s.Close()
	s.setRoute(route)

	root, err := srv.navigator.RenderRoute(s, route)
	if errors.Is(err, ErrUnknownRoute) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		srv.logger.Error("page render failed", "route", route, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "tree" {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(&protocol.TreeFrame{Route: route, Root: root}); err != nil {
			srv.logger.Error("tree encode failed", "route", route, "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageShell, route, render.HTML(root))
}

// pageShell wraps a rendered page. The script connects the websocket,
// requests the live tree, and applies update commands from then on.
const pageShell = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="glint-route" content="%s">
</head>
<body>
%s
<script src="/glint.js" defer></script>
</body>
</html>
`
