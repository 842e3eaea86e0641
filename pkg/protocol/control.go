package protocol

import "fmt"

// ControlType identifies a control message.
type ControlType uint8

const (
	ControlPing  ControlType = 0x01
	ControlPong  ControlType = 0x02
	ControlClose ControlType = 0x03
)

// String returns the string representation of the control type.
func (ct ControlType) String() string {
	switch ct {
	case ControlPing:
		return "Ping"
	case ControlPong:
		return "Pong"
	case ControlClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// PingPong carries a millisecond timestamp for latency measurement.
type PingPong struct {
	Timestamp uint64
}

// CloseReason categorizes a close control message.
type CloseReason uint8

const (
	CloseNormal   CloseReason = 0x00
	CloseShutdown CloseReason = 0x01
	CloseEvicted  CloseReason = 0x02
)

// CloseInfo carries the reason a side is closing the connection.
type CloseInfo struct {
	Reason  CloseReason
	Message string
}

// NewPing builds a ping control message.
func NewPing(timestamp uint64) (ControlType, *PingPong) {
	return ControlPing, &PingPong{Timestamp: timestamp}
}

// NewPong builds a pong control message.
func NewPong(timestamp uint64) (ControlType, *PingPong) {
	return ControlPong, &PingPong{Timestamp: timestamp}
}

// NewClose builds a close control message.
func NewClose(reason CloseReason, message string) (ControlType, *CloseInfo) {
	return ControlClose, &CloseInfo{Reason: reason, Message: message}
}

// EncodeControl encodes a control message payload.
func EncodeControl(ct ControlType, data any) []byte {
	e := NewEncoder()
	e.WriteByte(byte(ct))

	switch ct {
	case ControlPing, ControlPong:
		if pp, ok := data.(*PingPong); ok {
			e.WriteUvarint(pp.Timestamp)
		}
	case ControlClose:
		if ci, ok := data.(*CloseInfo); ok {
			e.WriteByte(byte(ci.Reason))
			e.WriteString(ci.Message)
		}
	}

	return e.Bytes()
}

// DecodeControl decodes a control message payload. The second return value
// is *PingPong or *CloseInfo depending on the control type.
func DecodeControl(data []byte) (ControlType, any, error) {
	d := NewDecoder(data)

	ctByte, err := d.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	ct := ControlType(ctByte)

	switch ct {
	case ControlPing, ControlPong:
		ts, err := d.ReadUvarint()
		if err != nil {
			return ct, nil, err
		}
		return ct, &PingPong{Timestamp: ts}, nil

	case ControlClose:
		reason, err := d.ReadByte()
		if err != nil {
			return ct, nil, err
		}
		msg, err := d.ReadString()
		if err != nil {
			return ct, nil, err
		}
		return ct, &CloseInfo{Reason: CloseReason(reason), Message: msg}, nil

	default:
		return ct, nil, fmt.Errorf("protocol: unknown control type 0x%02x", ctByte)
	}
}
