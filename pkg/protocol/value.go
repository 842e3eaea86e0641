package protocol

import (
	"errors"
	"fmt"
)

// valueKind tags an encoded dynamic value.
type valueKind uint8

const (
	valueNil    valueKind = 0x00
	valueString valueKind = 0x01
	valueInt    valueKind = 0x02
	valueFloat  valueKind = 0x03
	valueBool   valueKind = 0x04
)

// ErrUnsupportedValue is returned when encoding a value of a type the
// protocol cannot represent.
var ErrUnsupportedValue = errors.New("protocol: unsupported value type")

// encodeValue encodes a dynamic value. Supported types: nil, string,
// int variants, float64, bool. Event props and raw-event fields use this.
func encodeValue(e *Encoder, v any) error {
	switch val := v.(type) {
	case nil:
		e.WriteByte(byte(valueNil))
	case string:
		e.WriteByte(byte(valueString))
		e.WriteString(val)
	case int:
		e.WriteByte(byte(valueInt))
		e.WriteSvarint(int64(val))
	case int32:
		e.WriteByte(byte(valueInt))
		e.WriteSvarint(int64(val))
	case int64:
		e.WriteByte(byte(valueInt))
		e.WriteSvarint(val)
	case float64:
		e.WriteByte(byte(valueFloat))
		e.WriteFloat64(val)
	case bool:
		e.WriteByte(byte(valueBool))
		e.WriteBool(val)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	return nil
}

// decodeValue decodes a dynamic value. Integers decode as int64.
func decodeValue(d *Decoder) (any, error) {
	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	switch valueKind(kind) {
	case valueNil:
		return nil, nil
	case valueString:
		return d.ReadString()
	case valueInt:
		return d.ReadSvarint()
	case valueFloat:
		return d.ReadFloat64()
	case valueBool:
		return d.ReadBool()
	default:
		return nil, fmt.Errorf("protocol: unknown value kind 0x%02x", kind)
	}
}

// encodeValueMap encodes a string-keyed map of dynamic values.
func encodeValueMap(e *Encoder, m map[string]any) error {
	e.WriteUvarint(uint64(len(m)))
	for k, v := range m {
		e.WriteString(k)
		if err := encodeValue(e, v); err != nil {
			return err
		}
	}
	return nil
}

// decodeValueMap decodes a string-keyed map of dynamic values.
// Returns nil for an empty map.
func decodeValueMap(d *Decoder) (map[string]any, error) {
	count, err := d.readCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	m := make(map[string]any, count)
	for i := 0; i < count; i++ {
		k, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(d)
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}
