// Package pages holds the page registry: the mapping from route strings to
// the functions that render them. The runtime's Navigator looks routes up
// here; it never renders anything itself.
//
// Every route must be registered explicitly. There is deliberately no
// wildcard fallback: navigating to an unregistered route is an error the
// calling handler decides how to present.
package pages

import (
	"sort"
	"sync"

	"github.com/glint-ui/glint/pkg/protocol"
)

// Session is the view of a runtime session a page function needs while
// rendering. It is satisfied by *server.Session.
type Session interface {
	Get(key string) any
	GetDefault(key string, def any) any
	Set(key string, value any)
	CurrentRoute() string
}

// PageFunc renders the tree for one route on behalf of a session.
type PageFunc func(s Session) *protocol.Node

// Registry maps routes to page functions. Safe for concurrent use;
// registration typically happens once at startup.
type Registry struct {
	mu    sync.RWMutex
	pages map[string]PageFunc
}

// NewRegistry creates an empty page registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]PageFunc)}
}

// Register binds a route to a page function. Registering the same route
// twice replaces the earlier binding.
func (r *Registry) Register(route string, fn PageFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[route] = fn
}

// Lookup returns the page function for a route.
func (r *Registry) Lookup(route string) (PageFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.pages[route]
	return fn, ok
}

// Routes returns all registered routes in sorted order.
func (r *Registry) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]string, 0, len(r.pages))
	for route := range r.pages {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	return routes
}
