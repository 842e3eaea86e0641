package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/glint-ui/glint/pkg/protocol"
	"github.com/glint-ui/glint/pkg/server"
	"github.com/glint-ui/glint/pkg/uitest"
)

func newDemoServer(t *testing.T) *server.Server {
	t.Helper()
	cfg := server.DefaultServerConfig()
	cfg.DisableMetrics = true
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := server.New(cfg, logger)
	registerDemoPages(srv)
	return srv
}

// findBinding walks a rendered tree for the callback id bound to the
// button with the given label.
func findBinding(n *protocol.Node, label string) string {
	if n == nil {
		return ""
	}
	if n.Tag == "button" && len(n.Children) > 0 && n.Children[0].Text == label {
		return n.Props["data-on-click"]
	}
	for _, c := range n.Children {
		if id := findBinding(c, label); id != "" {
			return id
		}
	}
	return ""
}

func TestDemoTodoFlow(t *testing.T) {
	srv := newDemoServer(t)
	s, rt := uitest.NewSession(t)

	if err := srv.Navigator().Navigate(s, "/"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	trees := rt.Trees(t)
	if len(trees) != 1 {
		t.Fatalf("tree frames = %d, want 1", len(trees))
	}
	addID := findBinding(trees[0].Root, "Add")
	if addID == "" {
		t.Fatal("Add button has no binding")
	}

	cb, ok := s.Callbacks().Lookup(addID)
	if !ok {
		t.Fatalf("binding %s not in registry", addID)
	}

	rt.Reset()
	d := server.NewDispatcher(nil, nil)
	err := d.Invoke(s, cb, &protocol.EventMessage{
		CallbackID: addID,
		Props:      map[string]any{"todo-input": "write docs"},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	cmds := rt.Commands(t)
	if len(cmds) != 3 {
		t.Fatalf("commands = %d, want 3", len(cmds))
	}
	if cmds[0].Kind != protocol.CmdAppend || cmds[0].Target != "todo-list" {
		t.Errorf("cmd[0] = %+v", cmds[0])
	}
	if cmds[1].Target != "todo-count" || cmds[1].Text != "1" {
		t.Errorf("cmd[1] = %+v", cmds[1])
	}
	if cmds[2].Kind != protocol.CmdUpdateProps || cmds[2].Target != "todo-input" {
		t.Errorf("cmd[2] = %+v", cmds[2])
	}
}

func TestDemoEmptyTodoWarns(t *testing.T) {
	srv := newDemoServer(t)
	s, rt := uitest.NewSession(t)

	if err := srv.Navigator().Navigate(s, "/"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	addID := findBinding(rt.Trees(t)[0].Root, "Add")
	cb, _ := s.Callbacks().Lookup(addID)

	rt.Reset()
	d := server.NewDispatcher(nil, nil)
	if err := d.Invoke(s, cb, &protocol.EventMessage{
		Props: map[string]any{"todo-input": "   "},
	}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	cmds := rt.CommandsFor(t, "toast-host")
	if len(cmds) != 1 {
		t.Fatalf("toast commands = %d, want 1", len(cmds))
	}
	if got := cmds[0].Node.Props["class"]; got != "toast toast-warning" {
		t.Errorf("toast class = %q", got)
	}
}

func TestDemoNavigationRoundTrip(t *testing.T) {
	srv := newDemoServer(t)
	s, rt := uitest.NewSession(t)

	if err := srv.Navigator().Navigate(s, "/"); err != nil {
		t.Fatalf("Navigate /: %v", err)
	}
	s.Set("todos", []string{"persisted"})

	storyID := findBinding(rt.Trees(t)[0].Root, "Story demo")
	cb, ok := s.Callbacks().Lookup(storyID)
	if !ok {
		t.Fatal("story binding missing")
	}

	d := server.NewDispatcher(nil, nil)
	if err := d.Invoke(s, cb, &protocol.EventMessage{}); err != nil {
		t.Fatalf("Invoke nav: %v", err)
	}
	if got := s.CurrentRoute(); got != "/story" {
		t.Fatalf("route = %q, want /story", got)
	}

	// State survives; the todo list re-renders from it on the way back.
	backID := findBinding(rt.Trees(t)[1].Root, "Back")
	cb, _ = s.Callbacks().Lookup(backID)
	if err := d.Invoke(s, cb, &protocol.EventMessage{}); err != nil {
		t.Fatalf("Invoke back: %v", err)
	}

	trees := rt.Trees(t)
	home := trees[len(trees)-1]
	if got := findText(home.Root, "persisted"); !got {
		t.Error("todo lost across navigation")
	}
}

func findText(n *protocol.Node, text string) bool {
	if n == nil {
		return false
	}
	if n.Text == text {
		return true
	}
	for _, c := range n.Children {
		if findText(c, text) {
			return true
		}
	}
	return false
}
