package server

import (
	"strings"
	"testing"
)

func TestRegisterAndLookup(t *testing.T) {
	r := NewCallbackRegistry()

	id := r.Register(func(s *Session, args map[string]any) error { return nil },
		WithBound(map[string]any{"n": 1}),
		WithProps("todo-input"),
		WithEvents("key"),
	)

	if !strings.HasPrefix(id, "cb-") {
		t.Errorf("id = %q, want cb- prefix", id)
	}

	cb, ok := r.Lookup(id)
	if !ok {
		t.Fatal("Lookup failed for freshly registered id")
	}
	if cb.Bound["n"] != 1 {
		t.Errorf("Bound = %v", cb.Bound)
	}
	if len(cb.Props) != 1 || cb.Props[0] != "todo-input" {
		t.Errorf("Props = %v", cb.Props)
	}
	if len(cb.Events) != 1 || cb.Events[0] != "key" {
		t.Errorf("Events = %v", cb.Events)
	}
}

func TestRegisterIDsUnique(t *testing.T) {
	r := NewCallbackRegistry()
	noop := func(s *Session, args map[string]any) error { return nil }

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := r.Register(noop)
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if r.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", r.Len())
	}
}

func TestRegistryPrefixesDiffer(t *testing.T) {
	a := NewCallbackRegistry().Register(func(*Session, map[string]any) error { return nil })
	b := NewCallbackRegistry().Register(func(*Session, map[string]any) error { return nil })
	if a == b {
		t.Errorf("ids from distinct registries collide: %s", a)
	}
}

func TestClearInvalidatesIDs(t *testing.T) {
	r := NewCallbackRegistry()
	id := r.Register(func(s *Session, args map[string]any) error { return nil })

	r.Clear()

	if _, ok := r.Lookup(id); ok {
		t.Error("Lookup succeeded after Clear")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after Clear", r.Len())
	}
}
