package session

import (
	"encoding/json"
	"fmt"
)

const jsonRPCVersion = "2.0"

type rpcRequest struct {
	ID      int64  `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	ID      int64           `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type peerParams struct {
	PeerID   string   `json:"peerId"`
	PeerMeta PeerMeta `json:"peerMeta"`
	NextKey  string   `json:"nextKey,omitempty"`
}

type updateParams struct {
	Approved bool      `json:"approved"`
	ChainID  *int64    `json:"chainId,omitempty"`
	Accounts *[]string `json:"accounts,omitempty"`
	Message  *string   `json:"message,omitempty"`
}

type txParams struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Nonce    string `json:"nonce"`
	GasPrice string `json:"gasPrice"`
	GasLimit string `json:"gasLimit"`
	Value    string `json:"value"`
	Data     string `json:"data"`
}

func request(id int64, method string, params ...any) rpcRequest {
	if params == nil {
		params = []any{}
	}
	return rpcRequest{ID: id, JSONRPC: jsonRPCVersion, Method: method, Params: params}
}

func accountsParam(accounts []string) *[]string {
	if accounts == nil {
		return nil
	}
	return &accounts
}

// Marshal serializes call to its JSON-RPC form.
func Marshal(call MethodCall) ([]byte, error) {
	var v any
	switch c := call.(type) {
	case SessionRequest:
		v = request(c.ID, MethodSessionRequest, peerParams{PeerID: c.Peer.ID, PeerMeta: c.Peer.Meta})
	case SessionUpdate:
		v = request(c.ID, MethodSessionUpdate, updateParams{
			Approved: c.Params.Approved,
			ChainID:  c.Params.ChainID,
			Accounts: accountsParam(c.Params.Accounts),
			Message:  c.Params.Message,
		})
	case ExchangeKey:
		v = request(c.ID, MethodExchangeKey, peerParams{PeerID: c.Peer.ID, PeerMeta: c.Peer.Meta, NextKey: c.NextKey})
	case SendTransaction:
		v = request(c.ID, MethodSendTransaction, txParams{
			From:     c.From,
			To:       c.To,
			Nonce:    c.Nonce,
			GasPrice: c.GasPrice,
			GasLimit: c.GasLimit,
			Value:    c.Value,
			Data:     c.Data,
		})
	case SignMessage:
		v = request(c.ID, MethodSign, c.Address, c.Message)
	case Custom:
		params := make([]any, len(c.Params))
		for i, p := range c.Params {
			params[i] = p
		}
		v = request(c.ID, c.Method, params...)
	case Response:
		if len(c.Result) == 0 && c.Error == nil {
			return nil, fmt.Errorf("%w: response %d has neither result nor error", ErrUnknownCall, c.ID)
		}
		v = rpcResponse{ID: c.ID, JSONRPC: jsonRPCVersion, Result: c.Result, Error: c.Error}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCall, call)
	}
	return json.Marshal(v)
}
