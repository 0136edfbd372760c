package session

import (
	"errors"
	"fmt"
)

var (
	ErrIntegrity      = errors.New("session: hmac mismatch")
	ErrInvalidPayload = errors.New("session: invalid encrypted payload")
	ErrInvalidKey     = errors.New("session: invalid key")
	ErrMalformedCall  = errors.New("session: malformed method call")
	ErrUnknownCall    = errors.New("session: unsupported method call type")
)

// MalformedMethodCallError reports an inbound message that could not be
// turned into a MethodCall. ID is valid when HasID is set, so the caller can
// answer with an error Response.
type MalformedMethodCallError struct {
	ID     int64
	HasID  bool
	Raw    string
	Reason string
}

func (e *MalformedMethodCallError) Error() string {
	if e.HasID {
		return fmt.Sprintf("session: malformed method call %d: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("session: malformed method call: %s", e.Reason)
}

func (e *MalformedMethodCallError) Unwrap() error {
	return ErrMalformedCall
}

// Reply returns the error Response for e, or false when the id is unknown.
func (e *MalformedMethodCallError) Reply() (Response, bool) {
	if !e.HasID {
		return Response{}, false
	}
	return ErrorResponse(e.ID, CodeInvalidRequest, e.Reason), true
}
