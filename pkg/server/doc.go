// Package server implements the Glint session runtime: the per-connection
// Session, the callback registry and dispatcher, the update channel, chain
// execution, stream delivery, session broadcast, and in-place navigation.
//
// The runtime owns all application state. The remote renderer is a thin
// painter: it applies the update commands the runtime emits and reports user
// actions back as callback events. Rendering (producing trees) belongs to
// page functions and component code outside this package.
//
// Within one session, every inbound event is dispatched as its own
// goroutine. Update command ordering is guaranteed per caller only: two
// concurrently running handlers on the same session may interleave their
// commands. The session state map is locked for map-structure safety, but
// compound read-modify-write sequences across concurrent handlers are the
// application's responsibility.
package server
