package abi

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidType      = errors.New("abi: invalid type")
	ErrValueOutOfRange  = errors.New("abi: value out of range")
	ErrUnsupportedValue = errors.New("abi: unsupported value")
)

// DecodeError reports malformed ABI input: too short for the declared type,
// non-hex characters, or padding that does not fit the declared width.
type DecodeError struct {
	Type   string
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("abi: cannot decode %s at offset %d: %s", e.Type, e.Offset, e.Reason)
}

func decodeErr(t Type, offset int, format string, args ...any) error {
	return &DecodeError{Type: t.String(), Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
