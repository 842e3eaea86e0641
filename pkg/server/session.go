package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glint-ui/glint/pkg/protocol"
)

// Session represents one live connection and its server-side state.
//
// The state map lives exactly as long as the connection: it is created on
// connect, survives navigation and any number of callback invocations, and
// is destroyed exactly once on disconnect. Only handler code running on
// behalf of this session mutates it.
//
// Individual Get/Set calls are safe under concurrency (Go maps require
// that much), but the runtime deliberately provides no cross-call mutual
// exclusion: two concurrent handlers doing read-modify-write on the same
// key race. That hazard is the embedding application's to manage, by
// construction or with its own locks.
type Session struct {
	// Identity
	ID        string
	CreatedAt time.Time

	lastActive atomic.Int64 // Unix nanos

	// Connection
	channel *UpdateChannel
	live    atomic.Bool

	// Lifecycle
	done      chan struct{}
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	inflight  sync.WaitGroup
	onClose   func(*Session)

	// Bounds concurrently running handlers for this session
	sem chan struct{}

	// State map (server lifetime only, see the type comment)
	state   map[string]any
	stateMu sync.RWMutex

	// Prop-store cache: client-captured input values, refreshed from
	// every inbound event and readable on demand via ResolveProps.
	props  map[string]any
	propMu sync.RWMutex

	// Callbacks registered by the current page's render
	callbacks *CallbackRegistry

	// Streams keyed by target element id
	streams  map[string]*Stream
	streamMu sync.Mutex

	// Current route; protected by routeMu so navigation and readers
	// don't race.
	route   string
	routeMu sync.RWMutex

	config  *SessionConfig
	logger  *slog.Logger
	metrics *Metrics

	// Counters
	eventCount atomic.Uint64
}

// generateSessionID generates a cryptographically random session id.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// SECURITY: fatal on entropy failure, weak ids are dangerous
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// NewSession creates a live session writing to the given transport.
// Callers outside this package are typically tests and embedding code;
// the server creates sessions itself on websocket upgrade.
func NewSession(t Transport, config *SessionConfig, logger *slog.Logger) *Session {
	if config == nil {
		config = DefaultSessionConfig()
	}
	if config.MaxInFlight <= 0 {
		config.MaxInFlight = DefaultSessionConfig().MaxInFlight
	}
	if logger == nil {
		logger = slog.Default()
	}

	id := generateSessionID()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		channel:   newUpdateChannel(t, logger.With("session_id", id)),
		done:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		state:     make(map[string]any),
		props:     make(map[string]any),
		callbacks: NewCallbackRegistry(),
		streams:   make(map[string]*Stream),
		sem:       make(chan struct{}, config.MaxInFlight),
		config:    config,
		logger:    logger.With("session_id", id),
	}
	s.live.Store(true)
	s.touch()
	return s
}

// =============================================================================
// State map
// =============================================================================

// Get retrieves a value from session state. Returns nil for a missing key.
func (s *Session) Get(key string) any {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state[key]
}

// GetDefault retrieves a value from session state, returning def when the
// key is absent.
func (s *Session) GetDefault(key string, def any) any {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if v, ok := s.state[key]; ok {
		return v
	}
	return def
}

// Set stores a value in session state. A no-op after disconnect.
func (s *Session) Set(key string, value any) {
	if !s.live.Load() {
		return
	}
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state[key] = value
}

// Update stores every entry of mapping into session state.
func (s *Session) Update(mapping map[string]any) {
	if !s.live.Load() {
		return
	}
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	for k, v := range mapping {
		s.state[k] = v
	}
}

// Delete removes a key from session state.
func (s *Session) Delete(key string) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	delete(s.state, key)
}

// Has reports whether a key exists in session state.
func (s *Session) Has(key string) bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	_, ok := s.state[key]
	return ok
}

// GetString returns the value as a string, or "" when absent or not a
// string.
func (s *Session) GetString(key string) string {
	if v, ok := s.Get(key).(string); ok {
		return v
	}
	return ""
}

// GetInt returns the value as an int, handling int, int64 and float64.
func (s *Session) GetInt(key string) int {
	switch v := s.Get(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// =============================================================================
// Prop-store cache
// =============================================================================

// cacheProps merges client-captured values into the prop-store cache.
// Called by the dispatcher for every inbound event.
func (s *Session) cacheProps(props map[string]any) {
	if len(props) == 0 {
		return
	}
	s.propMu.Lock()
	defer s.propMu.Unlock()
	for k, v := range props {
		s.props[k] = v
	}
}

// ResolveProps fetches cached client-side values for the given keys.
// Missing keys map to nil.
func (s *Session) ResolveProps(keys []string) map[string]any {
	s.propMu.RLock()
	defer s.propMu.RUnlock()

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = s.props[k]
	}
	return out
}

// =============================================================================
// Route, liveness, lifecycle
// =============================================================================

// Callbacks returns the session's callback registry.
func (s *Session) Callbacks() *CallbackRegistry {
	return s.callbacks
}

// Bind registers a handler and returns its id for embedding in a rendered
// tree as an element's event binding.
func (s *Session) Bind(h HandlerFunc, opts ...CallbackOption) string {
	return s.callbacks.Register(h, opts...)
}

// CurrentRoute returns the session's current route.
func (s *Session) CurrentRoute() string {
	s.routeMu.RLock()
	defer s.routeMu.RUnlock()
	return s.route
}

func (s *Session) setRoute(route string) {
	s.routeMu.Lock()
	defer s.routeMu.Unlock()
	s.route = route
}

// IsLive reports whether the connection is still up.
func (s *Session) IsLive() bool {
	return s.live.Load()
}

// Channel returns the session's update channel.
func (s *Session) Channel() *UpdateChannel {
	return s.channel
}

// Context returns a context cancelled when the session closes. Handlers
// doing external I/O should thread it through; cancellation on disconnect
// is best-effort and handlers that ignore it simply run to completion.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Done returns a channel closed when the session is destroyed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// LastActive returns the time of the last inbound activity.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// WaitIdle blocks until every dispatched handler has finished. Intended
// for tests and shutdown paths; calling it from inside a handler
// deadlocks.
func (s *Session) WaitIdle() {
	s.inflight.Wait()
}

// track registers an in-flight dispatch; the returned func marks it done.
func (s *Session) track() func() {
	s.inflight.Add(1)
	return s.inflight.Done
}

// NotifyShutdown tells the client the server is going away. Call before
// Close during graceful shutdown so the browser can show a reconnect
// banner instead of a generic disconnect.
func (s *Session) NotifyShutdown() {
	s.channel.SendControl(protocol.NewClose(protocol.CloseShutdown, "server shutting down"))
}

// Close destroys the session: marks it not-live, cancels in-flight work,
// closes the update channel and the transport, and drops all state.
// Safe to call more than once; teardown runs exactly once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.live.Store(false)
		s.cancel()
		close(s.done)

		s.channel.Close()
		if t := s.channelTransport(); t != nil {
			t.Close()
		}

		// In-flight handlers may still be running; they see a closed
		// channel and their sends are dropped. State is cleared, not
		// nilled, once they finish: the read loop can reach the prop
		// cache between its liveness check and the map write.
		go func() {
			s.inflight.Wait()

			s.stateMu.Lock()
			clear(s.state)
			s.stateMu.Unlock()

			s.propMu.Lock()
			clear(s.props)
			s.propMu.Unlock()
		}()

		if s.onClose != nil {
			s.onClose(s)
		}

		s.logger.Info("session closed",
			"events", s.eventCount.Load(),
			"commands", s.channel.Seq())
	})
}

func (s *Session) channelTransport() Transport {
	s.channel.mu.Lock()
	defer s.channel.mu.Unlock()
	return s.channel.transport
}

// setOnClose registers a hook run once during Close. The server uses it to
// evict the session from the broadcast registry.
func (s *Session) setOnClose(fn func(*Session)) {
	s.onClose = fn
}
