package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrMalformed   = errors.New("malformed_envelope")
	ErrUnknownType = errors.New("unknown_envelope_type")
	ErrInvalidText = errors.New("invalid_utf8_text")
)

// DecodeError describes an inbound payload that could not be turned into an
// Envelope. Kind is ErrMalformed or ErrUnknownType.
type DecodeError struct {
	Kind error
	Type string
	Err  error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Type != "" && e.Err != nil:
		return fmt.Sprintf("%v: type %q: %v", e.Kind, e.Type, e.Err)
	case e.Type != "":
		return fmt.Sprintf("%v: type %q", e.Kind, e.Type)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(typ string, err error) *DecodeError {
	return &DecodeError{Kind: ErrMalformed, Type: typ, Err: err}
}
