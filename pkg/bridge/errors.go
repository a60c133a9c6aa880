package bridge

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Rejection is returned by a Host when a command completed with an error payload
type Rejection struct {
	Value Value
}

// Error implements the error interface
func (r *Rejection) Error() string {
	return "bridge: command rejected: " + r.Value.String()
}

// Reject encodes v as a rejection payload. It is meant for Host implementations.
func Reject(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("bridge: encode rejection: %w", err)
	}
	return &Rejection{Value: data}
}

// Failure returns the error payload for err: the rejection value if err is a
// *Rejection, otherwise err's message as a JSON string.
func Failure(err error) Value {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection.Value
	}
	data, _ := json.Marshal(err.Error())
	return data
}

// Fail converts an Invoke error for a function whose error result is the
// builtin error. Rejections decode into Error; any other failure, such as
// ErrNoHost or a cancelled context, is returned unchanged.
func Fail(cmd string, err error) error {
	var rejection *Rejection
	if !errors.As(err, &rejection) {
		return err
	}
	out, decodeErr := TryDecode[Error](cmd, rejection.Value)
	if decodeErr != nil {
		return decodeErr
	}
	out.Command = cmd
	return out
}

// Error is a rejection payload decoded for a builtin error result
type Error struct {
	Command string // command that was rejected
	Message string // the payload if it was a string, its "message" field if it was an object
	Raw     Value  // the payload as received
}

// Error implements the error interface
func (e Error) Error() string {
	if e.Command == "" {
		return e.Message
	}
	return e.Command + ": " + e.Message
}

// UnmarshalJSON accepts any JSON value
func (e *Error) UnmarshalJSON(data []byte) error {
	e.Raw = append(Value(nil), data...)

	var message string
	if err := json.Unmarshal(data, &message); err == nil {
		e.Message = message
		return nil
	}

	var object struct {
		Message *string `json:"message"`
		Error   *string `json:"error"`
	}
	if err := json.Unmarshal(data, &object); err == nil {
		switch {
		case object.Message != nil:
			e.Message = *object.Message
			return nil
		case object.Error != nil:
			e.Message = *object.Error
			return nil
		}
	}

	e.Message = string(data)
	return nil
}

// Op names the codec direction that failed
type Op string

const (
	OpEncode Op = "encode"
	OpDecode Op = "decode"
)

// DecodeError reports a value that could not cross the bridge in the expected shape
type DecodeError struct {
	Command string // command or event name
	Op      Op
	Err     error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("bridge: %s %s: %v", e.Op, e.Command, e.Err)
}

// Unwrap returns the codec error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnhandledError is the panic value for a failed command whose function has
// no error result
type UnhandledError struct {
	Command string
	Err     error
}

// Error implements the error interface
func (e *UnhandledError) Error() string {
	return fmt.Sprintf("bridge: %s failed: %v", e.Command, e.Err)
}

// Unwrap returns the invoke error
func (e *UnhandledError) Unwrap() error {
	return e.Err
}

// Fatal panics with an *UnhandledError
func Fatal(cmd string, err error) {
	panic(&UnhandledError{Command: cmd, Err: err})
}
