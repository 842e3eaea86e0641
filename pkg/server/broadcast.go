package server

import (
	"log/slog"
	"sync"

	"github.com/glint-ui/glint/pkg/protocol"
)

// Broadcaster tracks live sessions and fans work out across them.
//
// Iteration runs over a snapshot taken under the lock, so a broadcast
// never holds the registry lock while user code runs, and sessions
// connecting or disconnecting mid-broadcast neither block nor are blocked.
// A snapshotted session that disconnects before its turn just drops the
// sends.
type Broadcaster struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *slog.Logger
	metrics  *Metrics
}

// NewBroadcaster creates an empty broadcaster. logger may be nil.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Add registers a session for broadcast delivery.
func (b *Broadcaster) Add(s *Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[s.ID] = s

	if b.metrics != nil {
		b.metrics.ActiveSessions.Set(float64(len(b.sessions)))
	}
}

// Remove drops a session from broadcast delivery.
func (b *Broadcaster) Remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, id)

	if b.metrics != nil {
		b.metrics.ActiveSessions.Set(float64(len(b.sessions)))
	}
}

// Get returns the session with the given id, or nil.
func (b *Broadcaster) Get(id string) *Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sessions[id]
}

// Count returns the number of registered sessions.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

// snapshot returns the current session set as a slice.
func (b *Broadcaster) snapshot() []*Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Session, 0, len(b.sessions))
	for _, s := range b.sessions {
		out = append(out, s)
	}
	return out
}

// Broadcast runs fn once per registered session. Failures are isolated:
// fn erroring or panicking against one session is logged and the
// broadcast moves on to the next. It returns the number of sessions fn
// completed without error against.
func (b *Broadcaster) Broadcast(fn func(s *Session) error) int {
	delivered := 0
	for _, s := range b.snapshot() {
		if !s.IsLive() {
			continue
		}
		if err := b.deliver(s, fn); err != nil {
			b.logger.Error("broadcast delivery failed",
				"session_id", s.ID, "error", err)
			continue
		}
		delivered++
	}

	if b.metrics != nil {
		b.metrics.Broadcasts.Inc()
	}
	return delivered
}

// BroadcastRoute is Broadcast restricted to sessions currently on the
// given route.
func (b *Broadcaster) BroadcastRoute(route string, fn func(s *Session) error) int {
	delivered := 0
	for _, s := range b.snapshot() {
		if !s.IsLive() || s.CurrentRoute() != route {
			continue
		}
		if err := b.deliver(s, fn); err != nil {
			b.logger.Error("broadcast delivery failed",
				"session_id", s.ID, "route", route, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// Send broadcasts a single update command to every live session.
func (b *Broadcaster) Send(cmd protocol.Command) int {
	return b.Broadcast(func(s *Session) error {
		s.Channel().Send(cmd)
		return nil
	})
}

func (b *Broadcaster) deliver(s *Session, fn func(*Session) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{SessionID: s.ID, Panic: r}
		}
	}()
	return fn(s)
}
