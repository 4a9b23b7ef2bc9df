package api

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSymbol = errors.New("invalid_symbol")
	ErrInvalidMode   = errors.New("invalid_mode")
)

// NetworkError means no response was received. Retrying is up to the caller.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RequestError is a response with a non-success status.
type RequestError struct {
	Op      string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}
