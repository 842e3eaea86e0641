package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glint-ui/glint/pkg/pages"
	"github.com/glint-ui/glint/pkg/protocol"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := DefaultServerConfig()
	cfg.DisableMetrics = true
	srv := New(cfg, testLogger())
	srv.RegisterPage("/", func(s pages.Session) *protocol.Node {
		return protocol.El("div",
			protocol.El("h1", protocol.Text("Welcome")),
		).WithID("page-root")
	})
	return srv
}

func TestPageGetHTML(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	html := string(body)
	if !strings.Contains(html, `<div id="page-root">`) {
		t.Errorf("shell missing rendered page: %s", html)
	}
	if !strings.Contains(html, "<h1>Welcome</h1>") {
		t.Errorf("shell missing content: %s", html)
	}
}

func TestPageGetTreeJSON(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/?format=tree")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var tf protocol.TreeFrame
	if err := json.NewDecoder(resp.Body).Decode(&tf); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tf.Route != "/" || tf.Root.ID != "page-root" {
		t.Errorf("tree = %+v", tf)
	}
	if tf.Root.Children[0].Children[0].Text != "Welcome" {
		t.Errorf("tree content = %+v", tf.Root)
	}
}

func TestPageGetUnknownRoute(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
