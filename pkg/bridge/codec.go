package bridge

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Value is an opaque serialized value crossing the bridge
type Value []byte

var null = Value("null")

// MarshalJSON returns v as-is, or null when empty
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return null, nil
	}
	return v, nil
}

// UnmarshalJSON stores a copy of data
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = append((*v)[0:0], data...)
	return nil
}

// String returns the serialized form
func (v Value) String() string {
	if len(v) == 0 {
		return string(null)
	}
	return string(v)
}

// Envelope is the wire form of an event
type Envelope[T any] struct {
	Payload T `json:"payload"`
}

// TryEncode serializes v for cmd
func TryEncode(cmd string, v any) (Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &DecodeError{Command: cmd, Op: OpEncode, Err: err}
	}
	return Value(data), nil
}

// Encode serializes v for cmd and panics if it cannot
func Encode(cmd string, v any) Value {
	value, err := TryEncode(cmd, v)
	if err != nil {
		panic(err)
	}
	return value
}

// TryDecode deserializes a value received for cmd into T
func TryDecode[T any](cmd string, v Value) (T, error) {
	var out T
	data := bytes.TrimSpace(v)
	if len(data) == 0 {
		data = null
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &DecodeError{Command: cmd, Op: OpDecode, Err: err}
	}
	return out, nil
}

// Decode deserializes a value received for cmd into T and panics if it cannot
func Decode[T any](cmd string, v Value) T {
	out, err := TryDecode[T](cmd, v)
	if err != nil {
		panic(err)
	}
	return out
}
