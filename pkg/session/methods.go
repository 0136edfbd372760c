// Package session encodes the peer-to-peer wallet-connect protocol: JSON-RPC
// method calls carried in AES-CBC encrypted, HMAC-authenticated envelopes.
package session

import (
	"encoding/json"
	"fmt"
)

// Method names on the wire.
const (
	MethodSessionRequest  = "wc_sessionRequest"
	MethodSessionUpdate   = "wc_sessionUpdate"
	MethodExchangeKey     = "wc_exchangeKey"
	MethodSendTransaction = "eth_sendTransaction"
	MethodSign            = "eth_sign"
)

// MethodCall is one protocol message. The concrete type is one of
// SessionRequest, SessionUpdate, ExchangeKey, SendTransaction, SignMessage,
// Response or Custom.
type MethodCall interface {
	CallID() int64
	isMethodCall()
}

// PeerMeta describes a peer application. Every field is optional: a field
// with the wrong type on the wire is dropped, not rejected.
type PeerMeta struct {
	URL         string   `json:"url,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Icons       []string `json:"icons,omitempty"`
	SSL         bool     `json:"ssl"`
}

type PeerData struct {
	ID   string
	Meta PeerMeta
}

// SessionParams is the state announced by wc_sessionUpdate. Nil fields are
// left out of the message; an empty non-nil Accounts is sent as [].
type SessionParams struct {
	Approved bool
	ChainID  *int64
	Accounts []string
	Message  *string
}

type RPCError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

type SessionRequest struct {
	ID   int64
	Peer PeerData
}

type SessionUpdate struct {
	ID     int64
	Params SessionParams
}

type ExchangeKey struct {
	ID      int64
	NextKey string
	Peer    PeerData
}

// SendTransaction carries transaction fields as the hex strings the peer sent.
type SendTransaction struct {
	ID       int64
	From     string
	To       string
	Nonce    string
	GasPrice string
	GasLimit string
	Value    string
	Data     string
}

type SignMessage struct {
	ID      int64
	Address string
	Message string
}

// Response answers a previous call. At least one of Result and Error is set.
// Result holds the compact JSON of the result value.
type Response struct {
	ID     int64
	Result json.RawMessage
	Error  *RPCError
}

// NewResponse encodes result into a Response.
func NewResponse(id int64, result any) (Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return Response{}, fmt.Errorf("encode result: %w", err)
	}
	return Response{ID: id, Result: raw}, nil
}

// DecodeResult unmarshals Result into v.
func (c Response) DecodeResult(v any) error {
	if len(c.Result) == 0 {
		return fmt.Errorf("response %d has no result", c.ID)
	}
	return json.Unmarshal(c.Result, v)
}

// Custom is any method this package does not model. Params pass through as
// compact JSON, one entry per positional parameter; no params is nil.
type Custom struct {
	ID     int64
	Method string
	Params []json.RawMessage
}

// NewCustom encodes params into a Custom call.
func NewCustom(id int64, method string, params ...any) (Custom, error) {
	c := Custom{ID: id, Method: method}
	for i, p := range params {
		raw, err := json.Marshal(p)
		if err != nil {
			return Custom{}, fmt.Errorf("encode param %d: %w", i, err)
		}
		c.Params = append(c.Params, raw)
	}
	return c, nil
}

func (c SessionRequest) CallID() int64  { return c.ID }
func (c SessionUpdate) CallID() int64   { return c.ID }
func (c ExchangeKey) CallID() int64     { return c.ID }
func (c SendTransaction) CallID() int64 { return c.ID }
func (c SignMessage) CallID() int64     { return c.ID }
func (c Response) CallID() int64        { return c.ID }
func (c Custom) CallID() int64          { return c.ID }

func (SessionRequest) isMethodCall()  {}
func (SessionUpdate) isMethodCall()   {}
func (ExchangeKey) isMethodCall()     {}
func (SendTransaction) isMethodCall() {}
func (SignMessage) isMethodCall()     {}
func (Response) isMethodCall()        {}
func (Custom) isMethodCall()          {}

// Standard JSON-RPC error codes used when answering malformed calls.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
)

// ErrorResponse builds a Response that reports an error for call id.
func ErrorResponse(id int64, code int64, message string) Response {
	return Response{ID: id, Error: &RPCError{Code: code, Message: message}}
}
