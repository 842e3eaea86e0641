package server

import (
	"testing"
	"time"
)

func TestSessionIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateSessionID()
		if len(id) != 32 {
			t.Fatalf("id length = %d, want 32", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestSessionStateBasics(t *testing.T) {
	s, _ := newTestSession(t)

	if got := s.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
	if got := s.GetDefault("missing", 42); got != 42 {
		t.Errorf("GetDefault = %v, want 42", got)
	}

	s.Set("count", 7)
	if got := s.GetInt("count"); got != 7 {
		t.Errorf("GetInt = %d, want 7", got)
	}
	if !s.Has("count") {
		t.Error("Has(count) = false after Set")
	}

	s.Update(map[string]any{"a": "x", "b": "y"})
	if got := s.GetString("a"); got != "x" {
		t.Errorf("GetString(a) = %q, want x", got)
	}

	s.Delete("count")
	if s.Has("count") {
		t.Error("Has(count) = true after Delete")
	}
}

func TestSessionStateSurvivesDispatch(t *testing.T) {
	s, _ := newTestSession(t)
	s.Set("todos", []string{"one"})

	// Many sequential handler-style mutations against the same map.
	for i := 0; i < 10; i++ {
		todos := s.Get("todos").([]string)
		s.Set("todos", append(todos, "more"))
	}

	if got := len(s.Get("todos").([]string)); got != 11 {
		t.Errorf("len(todos) = %d, want 11", got)
	}
}

func TestSessionCloseIdempotent(t *testing.T) {
	rt := &recordingTransport{}
	s := NewSession(rt, nil, testLogger())

	s.Close()
	s.Close()
	s.Close()

	if s.IsLive() {
		t.Error("IsLive() = true after Close")
	}
	select {
	case <-s.Done():
	default:
		t.Error("Done() not closed after Close")
	}
	select {
	case <-s.Context().Done():
	default:
		t.Error("Context() not cancelled after Close")
	}

	rt.mu.Lock()
	closed := rt.closed
	rt.mu.Unlock()
	if !closed {
		t.Error("transport not closed")
	}
}

func TestSessionSetAfterCloseDropped(t *testing.T) {
	s, _ := newTestSession(t)
	s.Close()

	// Give the deferred state release a moment.
	time.Sleep(20 * time.Millisecond)

	s.Set("key", "value") // must not panic
	if s.Get("key") != nil {
		t.Error("Set after Close stored a value")
	}
}

func TestSessionPropCacheAfterClose(t *testing.T) {
	s, _ := newTestSession(t)
	s.Set("count", 1)
	s.Close()

	// Give the deferred state release a moment.
	time.Sleep(20 * time.Millisecond)

	// The read loop can hit the prop cache after Close when a
	// disconnect races an inbound event; the write must land on a
	// valid map.
	s.cacheProps(map[string]any{"todo-input": "late"})
	s.Delete("count")

	if got := s.Get("count"); got != nil {
		t.Errorf("Get after release = %v, want nil", got)
	}
}

func TestSessionOnCloseHook(t *testing.T) {
	s, _ := newTestSession(t)

	called := 0
	s.setOnClose(func(*Session) { called++ })

	s.Close()
	s.Close()
	if called != 1 {
		t.Errorf("onClose ran %d times, want 1", called)
	}
}

func TestSessionPropCache(t *testing.T) {
	s, _ := newTestSession(t)

	s.cacheProps(map[string]any{"todo-input": "buy milk", "other": 3})
	s.cacheProps(map[string]any{"todo-input": "buy bread"})

	got := s.ResolveProps([]string{"todo-input", "other", "absent"})
	if got["todo-input"] != "buy bread" {
		t.Errorf("todo-input = %v, want latest value", got["todo-input"])
	}
	if got["other"] != 3 {
		t.Errorf("other = %v, want 3", got["other"])
	}
	if v, ok := got["absent"]; !ok || v != nil {
		t.Errorf("absent = %v (present=%v), want nil entry", v, ok)
	}
}
