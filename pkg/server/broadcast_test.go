package server

import (
	"errors"
	"testing"

	"github.com/glint-ui/glint/pkg/protocol"
)

func TestBroadcastReachesAllSessions(t *testing.T) {
	b := NewBroadcaster(testLogger())

	var transports []*recordingTransport
	for i := 0; i < 3; i++ {
		s, rt := newTestSession(t)
		b.Add(s)
		transports = append(transports, rt)
	}

	n := b.Send(protocol.NewUpdateText("clock", "12:00"))
	if n != 3 {
		t.Fatalf("delivered = %d, want 3", n)
	}
	for i, rt := range transports {
		cmds := rt.commands(t)
		if len(cmds) != 1 || cmds[0].Text != "12:00" {
			t.Errorf("session %d: commands = %+v", i, cmds)
		}
	}
}

func TestBroadcastIsolatesFailures(t *testing.T) {
	b := NewBroadcaster(testLogger())

	good1, rt1 := newTestSession(t)
	bad, _ := newTestSession(t)
	good2, rt2 := newTestSession(t)
	b.Add(good1)
	b.Add(bad)
	b.Add(good2)

	boom := errors.New("boom")
	n := b.Broadcast(func(s *Session) error {
		if s.ID == bad.ID {
			return boom
		}
		s.Channel().Send(protocol.NewRemove("spinner"))
		return nil
	})

	if n != 2 {
		t.Errorf("delivered = %d, want 2", n)
	}
	if rt1.frameCount() != 1 || rt2.frameCount() != 1 {
		t.Error("healthy sessions must still receive the broadcast")
	}
}

func TestBroadcastIsolatesPanics(t *testing.T) {
	b := NewBroadcaster(testLogger())

	bad, _ := newTestSession(t)
	good, rt := newTestSession(t)
	b.Add(bad)
	b.Add(good)

	n := b.Broadcast(func(s *Session) error {
		if s.ID == bad.ID {
			panic("broadcast fn exploded")
		}
		s.Channel().Send(protocol.NewRemove("spinner"))
		return nil
	})

	if n != 1 {
		t.Errorf("delivered = %d, want 1", n)
	}
	if rt.frameCount() != 1 {
		t.Error("panic against one session must not stop the sweep")
	}
}

func TestBroadcastSkipsClosedSessions(t *testing.T) {
	b := NewBroadcaster(testLogger())

	open, rt := newTestSession(t)
	closed, _ := newTestSession(t)
	b.Add(open)
	b.Add(closed)
	closed.Close()

	n := b.Send(protocol.NewRemove("x"))
	if n != 1 {
		t.Errorf("delivered = %d, want 1", n)
	}
	if rt.frameCount() != 1 {
		t.Error("open session missed the broadcast")
	}
}

func TestBroadcastRoute(t *testing.T) {
	b := NewBroadcaster(testLogger())

	home, homeRT := newTestSession(t)
	home.setRoute("/")
	about, aboutRT := newTestSession(t)
	about.setRoute("/about")
	b.Add(home)
	b.Add(about)

	n := b.BroadcastRoute("/", func(s *Session) error {
		s.Channel().Send(protocol.NewRemove("banner"))
		return nil
	})

	if n != 1 {
		t.Errorf("delivered = %d, want 1", n)
	}
	if homeRT.frameCount() != 1 {
		t.Error("session on the route missed the broadcast")
	}
	if aboutRT.frameCount() != 0 {
		t.Error("session on another route received the broadcast")
	}
}

func TestRemoveStopsDelivery(t *testing.T) {
	b := NewBroadcaster(testLogger())

	s, rt := newTestSession(t)
	b.Add(s)
	b.Remove(s.ID)

	if b.Count() != 0 {
		t.Errorf("Count() = %d after Remove", b.Count())
	}
	b.Send(protocol.NewRemove("x"))
	if rt.frameCount() != 0 {
		t.Error("removed session received a broadcast")
	}
}

func TestGetByID(t *testing.T) {
	b := NewBroadcaster(testLogger())
	s, _ := newTestSession(t)
	b.Add(s)

	if got := b.Get(s.ID); got != s {
		t.Errorf("Get(%s) = %v", s.ID, got)
	}
	if got := b.Get("nope"); got != nil {
		t.Errorf("Get(nope) = %v, want nil", got)
	}
}
