package protocol

// EventMessage is a client-originated callback invocation request.
//
// Bound arguments are never part of the wire message: they are fixed at
// callback registration time on the server. Props carry the client-captured
// input values the callback declared; RawEvent carries fields derived from
// the browser event that triggered the invocation (key, coordinates, ...).
type EventMessage struct {
	Seq        uint64
	CallbackID string
	Props      map[string]any
	RawEvent   map[string]any
}

// EncodeEvent encodes an event message payload.
func EncodeEvent(ev *EventMessage) ([]byte, error) {
	e := NewEncoder()
	e.WriteUvarint(ev.Seq)
	e.WriteString(ev.CallbackID)
	if err := encodeValueMap(e, ev.Props); err != nil {
		return nil, err
	}
	if err := encodeValueMap(e, ev.RawEvent); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// DecodeEvent decodes an event message payload.
func DecodeEvent(data []byte) (*EventMessage, error) {
	d := NewDecoder(data)

	ev := &EventMessage{}
	var err error
	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.CallbackID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Props, err = decodeValueMap(d); err != nil {
		return nil, err
	}
	if ev.RawEvent, err = decodeValueMap(d); err != nil {
		return nil, err
	}
	return ev, nil
}
