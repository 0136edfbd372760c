package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/safekit/pkg/encoding"
)

// rawFields keeps the opaque members of a message as JSON.
type rawFields struct {
	Result json.RawMessage `json:"result"`
	Params json.RawMessage `json:"params"`
}

// Unmarshal parses a JSON-RPC message. The method field selects the variant;
// a message without one is a Response and unknown methods become Custom.
func Unmarshal(data []byte) (MethodCall, error) {
	m, err := encoding.JsonBytesToMap(data)
	if err != nil {
		return nil, &MalformedMethodCallError{Raw: string(data), Reason: "invalid json: " + err.Error()}
	}
	id, idErr := callID(m)
	fail := func(err error) error {
		return &MalformedMethodCallError{ID: id, HasID: idErr == nil, Raw: string(data), Reason: err.Error()}
	}
	if idErr != nil {
		return nil, fail(idErr)
	}

	var call MethodCall
	method, hasMethod := m["method"]
	if !hasMethod || method == nil {
		call, err = parseResponse(id, m, data)
	} else {
		name, ok := method.(string)
		if !ok {
			return nil, fail(errors.New("method is not a string"))
		}
		switch name {
		case MethodSessionRequest:
			call, err = parseSessionRequest(id, m)
		case MethodSessionUpdate:
			call, err = parseSessionUpdate(id, m)
		case MethodExchangeKey:
			call, err = parseExchangeKey(id, m)
		case MethodSendTransaction:
			call, err = parseSendTransaction(id, m)
		case MethodSign:
			call, err = parseSignMessage(id, m)
		default:
			call = parseCustom(id, name, data)
		}
	}
	if err != nil {
		return nil, fail(err)
	}
	return call, nil
}

func toInt64(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

func callID(m map[string]any) (int64, error) {
	raw, ok := m["id"]
	if !ok {
		return 0, errors.New("id missing")
	}
	id, ok := toInt64(raw)
	if !ok {
		return 0, errors.New("id is not a number")
	}
	return id, nil
}

func params(m map[string]any) ([]any, error) {
	p, ok := m["params"].([]any)
	if !ok {
		return nil, errors.New("params missing")
	}
	return p, nil
}

// firstParam returns params[0] as an object.
func firstParam(m map[string]any) (map[string]any, error) {
	p, err := params(m)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return nil, errors.New("invalid params")
	}
	obj, ok := p[0].(map[string]any)
	if !ok {
		return nil, errors.New("invalid params")
	}
	return obj, nil
}

func requireString(obj map[string]any, key string) (string, error) {
	s, ok := obj[key].(string)
	if !ok {
		return "", fmt.Errorf("%s missing", key)
	}
	return s, nil
}

func stringList(v any) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.New("not a list")
	}
	out := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, errors.New("list contains non-string values")
		}
		out[i] = s
	}
	return out, nil
}

func compactJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil
	}
	return buf.Bytes()
}

// peerMeta reads the optional metadata fields. Unknown keys are ignored and
// a field of the wrong type is left at its zero value.
func peerMeta(obj map[string]any) PeerMeta {
	var meta PeerMeta
	meta.URL, _ = obj["url"].(string)
	meta.Name, _ = obj["name"].(string)
	meta.Description, _ = obj["description"].(string)
	meta.SSL, _ = obj["ssl"].(bool)
	if raw, ok := obj["icons"]; ok && raw != nil {
		if icons, err := stringList(raw); err == nil {
			meta.Icons = icons
		}
	}
	return meta
}

func peerData(obj map[string]any) (PeerData, error) {
	id, err := requireString(obj, "peerId")
	if err != nil {
		return PeerData{}, err
	}
	peer := PeerData{ID: id}
	if meta, ok := obj["peerMeta"].(map[string]any); ok {
		peer.Meta = peerMeta(meta)
	}
	return peer, nil
}

func parseSessionRequest(id int64, m map[string]any) (MethodCall, error) {
	obj, err := firstParam(m)
	if err != nil {
		return nil, err
	}
	peer, err := peerData(obj)
	if err != nil {
		return nil, err
	}
	return SessionRequest{ID: id, Peer: peer}, nil
}

func parseSessionUpdate(id int64, m map[string]any) (MethodCall, error) {
	obj, err := firstParam(m)
	if err != nil {
		return nil, err
	}
	approved, ok := obj["approved"].(bool)
	if !ok {
		return nil, errors.New("approved missing")
	}
	params := SessionParams{Approved: approved}
	if chainID, ok := toInt64(obj["chainId"]); ok {
		params.ChainID = &chainID
	}
	if msg, ok := obj["message"].(string); ok {
		params.Message = &msg
	}
	if raw, ok := obj["accounts"]; ok && raw != nil {
		if accounts, err := stringList(raw); err == nil {
			params.Accounts = accounts
		}
	}
	return SessionUpdate{ID: id, Params: params}, nil
}

func parseExchangeKey(id int64, m map[string]any) (MethodCall, error) {
	obj, err := firstParam(m)
	if err != nil {
		return nil, err
	}
	nextKey, err := requireString(obj, "nextKey")
	if err != nil {
		return nil, err
	}
	peer, err := peerData(obj)
	if err != nil {
		return nil, err
	}
	return ExchangeKey{ID: id, NextKey: nextKey, Peer: peer}, nil
}

func parseSendTransaction(id int64, m map[string]any) (MethodCall, error) {
	obj, err := firstParam(m)
	if err != nil {
		return nil, err
	}
	tx := SendTransaction{ID: id}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"from", &tx.From},
		{"to", &tx.To},
		{"nonce", &tx.Nonce},
		{"gasPrice", &tx.GasPrice},
		{"gasLimit", &tx.GasLimit},
		{"value", &tx.Value},
		{"data", &tx.Data},
	} {
		if *f.dst, err = requireString(obj, f.key); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

func parseSignMessage(id int64, m map[string]any) (MethodCall, error) {
	p, err := params(m)
	if err != nil {
		return nil, err
	}
	at := func(i int) (string, bool) {
		if i >= len(p) {
			return "", false
		}
		s, ok := p[i].(string)
		return s, ok
	}
	address, ok := at(0)
	if !ok {
		return nil, errors.New("missing address")
	}
	message, ok := at(1)
	if !ok {
		return nil, errors.New("missing message")
	}
	return SignMessage{ID: id, Address: address, Message: message}, nil
}

func parseCustom(id int64, method string, data []byte) MethodCall {
	c := Custom{ID: id, Method: method}
	var raw rawFields
	var list []json.RawMessage
	if encoding.JsonBytesToStruct(data, &raw) != nil || encoding.JsonBytesToStruct(raw.Params, &list) != nil {
		return c
	}
	for _, p := range list {
		c.Params = append(c.Params, compactJSON(p))
	}
	return c
}

func parseResponse(id int64, m map[string]any, data []byte) (MethodCall, error) {
	var raw rawFields
	if err := encoding.JsonBytesToStruct(data, &raw); err != nil {
		return nil, err
	}
	result := compactJSON(raw.Result)
	if bytes.Equal(result, []byte("null")) {
		result = nil
	}
	errObj, _ := m["error"].(map[string]any)
	if result == nil && errObj == nil {
		return nil, errors.New("no result or error")
	}
	resp := Response{ID: id, Result: result}
	if errObj != nil {
		code, _ := toInt64(errObj["code"])
		message, ok := errObj["message"].(string)
		if !ok {
			message = "Unknown error"
		}
		resp.Error = &RPCError{Code: code, Message: message}
	}
	return resp, nil
}
