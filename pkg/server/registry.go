package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
)

// HandlerFunc is a server-side callback bound to a UI element. It receives
// the owning session and the merged argument map for the triggering event.
type HandlerFunc func(s *Session, args map[string]any) error

// Callback pairs a handler with the data it wants at invocation time:
// arguments bound at registration, client prop keys captured in the
// browser when the event fires, and raw-event fields forwarded verbatim.
type Callback struct {
	ID      string
	Handler HandlerFunc

	// Bound holds registration-time arguments. Lowest merge precedence.
	Bound map[string]any

	// Props names client-side values captured at event time (input
	// values and the like). Overrides Bound on key collision.
	Props []string

	// Events names raw browser event fields forwarded with the event.
	// Highest merge precedence.
	Events []string
}

// CallbackOption configures a callback at registration.
type CallbackOption func(*Callback)

// WithBound binds registration-time arguments to the callback.
func WithBound(args map[string]any) CallbackOption {
	return func(cb *Callback) {
		cb.Bound = args
	}
}

// WithProps declares client prop keys to capture when the event fires.
func WithProps(keys ...string) CallbackOption {
	return func(cb *Callback) {
		cb.Props = append(cb.Props, keys...)
	}
}

// WithEvents declares raw browser event fields to forward.
func WithEvents(fields ...string) CallbackOption {
	return func(cb *Callback) {
		cb.Events = append(cb.Events, fields...)
	}
}

// CallbackRegistry maps generated callback ids to handlers for one
// session. Registration happens during render; lookup happens on every
// inbound event. Clear is called on navigation so callbacks from the
// previous page can never fire against the new one.
type CallbackRegistry struct {
	mu        sync.RWMutex
	callbacks map[string]*Callback
	counter   atomic.Uint64

	// prefix is a per-registry random component so ids from a previous
	// connection can never collide with this one.
	prefix string
}

// NewCallbackRegistry creates an empty registry.
func NewCallbackRegistry() *CallbackRegistry {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return &CallbackRegistry{
		callbacks: make(map[string]*Callback),
		prefix:    hex.EncodeToString(b),
	}
}

// Register stores a handler and returns its generated id, which the
// renderer embeds in the outgoing tree as the element's event binding.
func (r *CallbackRegistry) Register(h HandlerFunc, opts ...CallbackOption) string {
	id := fmt.Sprintf("cb-%s-%d", r.prefix, r.counter.Add(1))

	cb := &Callback{ID: id, Handler: h}
	for _, opt := range opts {
		opt(cb)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[id] = cb
	return id
}

// Lookup finds a callback by id. The second return is false for stale or
// unknown ids.
func (r *CallbackRegistry) Lookup(id string) (*Callback, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cb, ok := r.callbacks[id]
	return cb, ok
}

// Clear drops every registered callback. Called on navigation before the
// new page renders.
func (r *CallbackRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = make(map[string]*Callback)
}

// Len returns the number of registered callbacks.
func (r *CallbackRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.callbacks)
}
