package protocol

// HandshakeFrame is sent by the server immediately after the socket is
// established. It tells the client its session id and the route the session
// is currently on.
type HandshakeFrame struct {
	SessionID string
	Route     string
}

// EncodeHandshake encodes a handshake frame payload.
func EncodeHandshake(hs *HandshakeFrame) []byte {
	e := NewEncoder()
	e.WriteString(hs.SessionID)
	e.WriteString(hs.Route)
	return e.Bytes()
}

// DecodeHandshake decodes a handshake frame payload.
func DecodeHandshake(data []byte) (*HandshakeFrame, error) {
	d := NewDecoder(data)

	id, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	route, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return &HandshakeFrame{SessionID: id, Route: route}, nil
}
