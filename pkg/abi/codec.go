package abi

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const wordSize = 32

// word left-pads b to 32 bytes (Ethereum ABI fixed slot).
func word(b []byte) []byte {
	slot := make([]byte, wordSize)
	if len(b) > wordSize {
		copy(slot, b[len(b)-wordSize:])
	} else {
		copy(slot[wordSize-len(b):], b)
	}
	return slot
}

// lengthWord encodes n as a uint256 slot.
func lengthWord(n int) []byte {
	return word(big.NewInt(int64(n)).Bytes())
}

// padded returns data right-padded with zeros to a 32-byte boundary.
func padded(data []byte) []byte {
	out := make([]byte, (len(data)+wordSize-1)&^(wordSize-1))
	copy(out, data)
	return out
}

// EncodeValue encodes v as declared type t. Static types produce exactly one
// 32-byte word; bytes produce a length word followed by the right-padded data.
func EncodeValue(t Type, v any) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	switch t.Kind {
	case KindAddress:
		a, err := toAddress(v)
		if err != nil {
			return nil, err
		}
		return word(a.Bytes()), nil
	case KindUint:
		n, err := toUint(v, t.Size)
		if err != nil {
			return nil, err
		}
		b := n.Bytes32()
		return b[:], nil
	case KindFixedBytes:
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrUnsupportedValue, t, t.Size, len(b))
		}
		slot := make([]byte, wordSize)
		copy(slot, b)
		return slot, nil
	case KindBytes:
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		return append(lengthWord(len(b)), padded(b)...), nil
	case KindArray:
		elems, err := toSlice(v)
		if err != nil {
			return nil, err
		}
		out := lengthWord(len(elems))
		for i, e := range elems {
			enc, err := EncodeValue(*t.Elem, e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, enc...)
		}
		return out, nil
	}
	return nil, ErrInvalidType
}

// Encode is EncodeValue returning unprefixed lowercase hex.
func Encode(v any, t Type) (string, error) {
	b, err := EncodeValue(t, v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// DecodeValue decodes a value of type t from the start of data and returns
// the value together with the number of bytes consumed.
//
// Decoding is strict: address words must have zero upper bytes, uint<N> words
// must fit N bits and fixed bytes must be zero past their length.
func DecodeValue(t Type, data []byte) (any, int, error) {
	if err := t.validate(); err != nil {
		return nil, 0, err
	}
	switch t.Kind {
	case KindAddress:
		if len(data) < wordSize {
			return nil, 0, decodeErr(t, 0, "need %d bytes, have %d", wordSize, len(data))
		}
		if !allZero(data[:12]) {
			return nil, 0, decodeErr(t, 0, "non-zero address padding")
		}
		return common.BytesToAddress(data[12:wordSize]), wordSize, nil
	case KindUint:
		if len(data) < wordSize {
			return nil, 0, decodeErr(t, 0, "need %d bytes, have %d", wordSize, len(data))
		}
		n := new(uint256.Int).SetBytes32(data[:wordSize])
		if n.BitLen() > t.Size {
			return nil, 0, decodeErr(t, 0, "value exceeds %d bits", t.Size)
		}
		return n, wordSize, nil
	case KindFixedBytes:
		if len(data) < wordSize {
			return nil, 0, decodeErr(t, 0, "need %d bytes, have %d", wordSize, len(data))
		}
		if !allZero(data[t.Size:wordSize]) {
			return nil, 0, decodeErr(t, 0, "non-zero trailing padding")
		}
		out := make([]byte, t.Size)
		copy(out, data[:t.Size])
		return out, wordSize, nil
	case KindBytes:
		n, err := decodeLength(t, data, 0)
		if err != nil {
			return nil, 0, err
		}
		end := wordSize + ((n + wordSize - 1) &^ (wordSize - 1))
		if len(data) < end {
			return nil, 0, decodeErr(t, wordSize, "need %d bytes, have %d", end, len(data))
		}
		out := make([]byte, n)
		copy(out, data[wordSize:wordSize+n])
		return out, end, nil
	case KindArray:
		n, err := decodeLength(t, data, 0)
		if err != nil {
			return nil, 0, err
		}
		if n > (len(data)-wordSize)/wordSize {
			return nil, 0, decodeErr(t, wordSize, "need %d elements, have room for %d", n, (len(data)-wordSize)/wordSize)
		}
		consumed := wordSize
		if t.Elem.Kind == KindAddress {
			out := make([]common.Address, 0, n)
			for i := 0; i < n; i++ {
				v, used, err := DecodeValue(*t.Elem, data[consumed:])
				if err != nil {
					return nil, 0, err
				}
				out = append(out, v.(common.Address))
				consumed += used
			}
			return out, consumed, nil
		}
		out := make([]any, 0, n)
		for i := 0; i < n; i++ {
			v, used, err := DecodeValue(*t.Elem, data[consumed:])
			if err != nil {
				return nil, 0, err
			}
			out = append(out, v)
			consumed += used
		}
		return out, consumed, nil
	}
	return nil, 0, ErrInvalidType
}

// Decode decodes hex (with or without 0x) as a value of type t.
func Decode(s string, t Type) (any, error) {
	data, err := decodeHex(s, t)
	if err != nil {
		return nil, err
	}
	v, _, err := DecodeValue(t, data)
	return v, err
}

// Arg is one argument of a tuple or function call.
type Arg struct {
	Type  Type
	Value any
}

func AddressArg(a common.Address) Arg { return Arg{Type: Address, Value: a} }

func Uint256Arg(n *uint256.Int) Arg { return Arg{Type: Uint256, Value: n} }

func Uint8Arg(n uint8) Arg { return Arg{Type: Uint8, Value: n} }

func BytesArg(b []byte) Arg { return Arg{Type: Bytes, Value: b} }

// EncodeArgs encodes args as a tuple: one head word per argument, dynamic
// arguments referenced by their offset from the start of the head.
func EncodeArgs(args ...Arg) ([]byte, error) {
	head := make([]byte, 0, len(args)*wordSize)
	var tail []byte
	for i, a := range args {
		enc, err := EncodeValue(a.Type, a.Value)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, a.Type, err)
		}
		if a.Type.IsDynamic() {
			head = append(head, lengthWord(len(args)*wordSize+len(tail))...)
			tail = append(tail, enc...)
			continue
		}
		head = append(head, enc...)
	}
	return append(head, tail...), nil
}

// DecodeArgs decodes a tuple of the given types from data.
func DecodeArgs(types []Type, data []byte) ([]any, error) {
	out := make([]any, len(types))
	for i, t := range types {
		pos := i * wordSize
		if !t.IsDynamic() {
			v, _, err := DecodeValue(t, data[min(pos, len(data)):])
			if err != nil {
				return nil, shiftOffset(err, pos)
			}
			out[i] = v
			continue
		}
		off, err := decodeLength(t, data, pos)
		if err != nil {
			return nil, err
		}
		if off > len(data) {
			return nil, decodeErr(t, pos, "offset %d beyond input of %d bytes", off, len(data))
		}
		v, _, err := DecodeValue(t, data[off:])
		if err != nil {
			return nil, shiftOffset(err, off)
		}
		out[i] = v
	}
	return out, nil
}

// EncodeCall returns selector(signature) followed by the encoded args.
func EncodeCall(signature string, args ...Arg) ([]byte, error) {
	sel := Selector(signature)
	enc, err := EncodeArgs(args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", signature, err)
	}
	return append(sel[:], enc...), nil
}

// MustEncodeCall is EncodeCall for call sites whose argument types are fixed
// at compile time. It panics on error.
func MustEncodeCall(signature string, args ...Arg) []byte {
	b, err := EncodeCall(signature, args...)
	if err != nil {
		panic(err)
	}
	return b
}

func decodeLength(t Type, data []byte, pos int) (int, error) {
	if len(data) < pos+wordSize {
		return 0, decodeErr(t, pos, "need %d bytes, have %d", pos+wordSize, len(data))
	}
	n := new(uint256.Int).SetBytes32(data[pos : pos+wordSize])
	if !n.IsUint64() || n.Uint64() > uint64(len(data)) {
		return 0, decodeErr(t, pos, "length %s exceeds input", n.Dec())
	}
	return int(n.Uint64()), nil
}

func shiftOffset(err error, by int) error {
	if de, ok := err.(*DecodeError); ok {
		return &DecodeError{Type: de.Type, Offset: de.Offset + by, Reason: de.Reason}
	}
	return err
}

func decodeHex(s string, t Type) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, decodeErr(t, 0, "invalid hex: %v", err)
	}
	return b, nil
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

func toAddress(v any) (common.Address, error) {
	switch a := v.(type) {
	case common.Address:
		return a, nil
	case *common.Address:
		if a == nil {
			return common.Address{}, nil
		}
		return *a, nil
	case string:
		if !common.IsHexAddress(a) {
			return common.Address{}, fmt.Errorf("%w: %q is not an address", ErrUnsupportedValue, a)
		}
		return common.HexToAddress(a), nil
	}
	return common.Address{}, fmt.Errorf("%w: %T as address", ErrUnsupportedValue, v)
}

func toUint(v any, bits int) (*uint256.Int, error) {
	var n *uint256.Int
	switch x := v.(type) {
	case *uint256.Int:
		if x == nil {
			return new(uint256.Int), nil
		}
		n = x
	case uint256.Int:
		n = &x
	case uint8:
		n = uint256.NewInt(uint64(x))
	case uint64:
		n = uint256.NewInt(x)
	case uint:
		n = uint256.NewInt(uint64(x))
	case int:
		if x < 0 {
			return nil, fmt.Errorf("%w: negative %d", ErrValueOutOfRange, x)
		}
		n = uint256.NewInt(uint64(x))
	case int64:
		if x < 0 {
			return nil, fmt.Errorf("%w: negative %d", ErrValueOutOfRange, x)
		}
		n = uint256.NewInt(uint64(x))
	case *big.Int:
		if x == nil {
			return new(uint256.Int), nil
		}
		if x.Sign() < 0 {
			return nil, fmt.Errorf("%w: negative %s", ErrValueOutOfRange, x)
		}
		var overflow bool
		n, overflow = uint256.FromBig(x)
		if overflow {
			return nil, fmt.Errorf("%w: %s exceeds 256 bits", ErrValueOutOfRange, x)
		}
	default:
		return nil, fmt.Errorf("%w: %T as uint", ErrUnsupportedValue, v)
	}
	if n.BitLen() > bits {
		return nil, fmt.Errorf("%w: %s exceeds uint%d", ErrValueOutOfRange, n.Dec(), bits)
	}
	return n, nil
}

func toBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case [32]byte:
		return b[:], nil
	case common.Hash:
		return b.Bytes(), nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %T as bytes", ErrUnsupportedValue, v)
}

func toSlice(v any) ([]any, error) {
	switch s := v.(type) {
	case []common.Address:
		out := make([]any, len(s))
		for i, a := range s {
			out[i] = a
		}
		return out, nil
	case []any:
		return s, nil
	}
	return nil, fmt.Errorf("%w: %T as array", ErrUnsupportedValue, v)
}
