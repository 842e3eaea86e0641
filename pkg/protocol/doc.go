// Package protocol implements the binary wire protocol between the Glint
// runtime and the remote renderer.
//
// All traffic flows as frames: a 4-byte header (type, flags, payload length)
// followed by a payload encoded with a varint-based binary codec. The server
// pushes update commands (imperative element mutations) and full-tree pushes;
// the client sends events that reference registered callbacks by id.
//
// The protocol carries no acknowledgment of command application: a command
// whose target id does not exist on the remote side is a silent no-op there.
package protocol
