package protocol

// ErrorCode identifies an error condition reported over the wire.
type ErrorCode uint16

const (
	ErrCodeProtocol       ErrorCode = 0x0001 // Malformed frame or payload
	ErrCodeStaleCallback  ErrorCode = 0x0002 // Unknown or expired callback id
	ErrCodeHandlerFailure ErrorCode = 0x0003 // Handler raised or panicked
	ErrCodeQueueFull      ErrorCode = 0x0004 // Inbound event dropped
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeProtocol:
		return "Protocol"
	case ErrCodeStaleCallback:
		return "StaleCallback"
	case ErrCodeHandlerFailure:
		return "HandlerFailure"
	case ErrCodeQueueFull:
		return "QueueFull"
	default:
		return "Unknown"
	}
}

// ErrorMessage is an error report frame payload. It is informational: the
// runtime surfaces user-visible failures as toast commands, not error
// frames, so clients may log these and move on.
type ErrorMessage struct {
	Code    ErrorCode
	Message string
}

// NewError creates an error message.
func NewError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message}
}

// EncodeErrorMessage encodes an error message payload.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteUint16(uint16(em.Code))
	e.WriteString(em.Message)
	return e.Bytes()
}

// DecodeErrorMessage decodes an error message payload.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)

	code, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	msg, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return &ErrorMessage{Code: ErrorCode(code), Message: msg}, nil
}
