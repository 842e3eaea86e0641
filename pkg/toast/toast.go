// Package toast pushes transient notification elements into a page's
// toast host. Pages opt in by rendering an element with id "toast-host";
// everything else is targeted updates over the session's channel.
package toast

import (
	"fmt"
	"sync/atomic"

	"github.com/glint-ui/glint/pkg/protocol"
	"github.com/glint-ui/glint/pkg/server"
)

// HostID is the element id toasts append into.
const HostID = "toast-host"

// Level selects the toast's visual treatment.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

var counter atomic.Uint64

// Show appends a toast to the session's toast host and returns the toast
// element's id, which Dismiss accepts. The client is expected to age
// toasts out on its own; Dismiss exists for handlers that want to retract
// one early.
func Show(s *server.Session, level Level, message string) string {
	id := fmt.Sprintf("toast-%d", counter.Add(1))

	node := protocol.El("div",
		protocol.El("span", protocol.Text(message)).WithProp("class", "toast-message"),
	).
		WithID(id).
		WithProp("class", "toast toast-"+string(level)).
		WithProp("role", "status")

	s.Channel().Send(protocol.NewAppend(HostID, node))
	return id
}

// Dismiss removes a previously shown toast.
func Dismiss(s *server.Session, id string) {
	s.Channel().Send(protocol.NewRemove(id))
}

// Info shows an informational toast.
func Info(s *server.Session, message string) string {
	return Show(s, LevelInfo, message)
}

// Success shows a success toast.
func Success(s *server.Session, message string) string {
	return Show(s, LevelSuccess, message)
}

// Warning shows a warning toast.
func Warning(s *server.Session, message string) string {
	return Show(s, LevelWarning, message)
}

// Error shows an error toast.
func Error(s *server.Session, message string) string {
	return Show(s, LevelError, message)
}

// Host renders an empty toast host for a page to mount. Place it once in
// the page tree, typically at the end of the body.
func Host() *protocol.Node {
	return protocol.El("div").WithID(HostID).WithProp("class", "toast-container")
}
