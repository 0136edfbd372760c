// Package abi implements the subset of the Ethereum contract ABI used by Safe
// transactions: 32-byte aligned words for addresses, unsigned integers and
// fixed bytes, length-prefixed dynamic bytes, address arrays, and function
// call encoding behind a 4-byte keccak selector.
package abi

import (
	"fmt"
	"strings"
)

// Kind is the family of an ABI type.
type Kind uint8

const (
	KindAddress Kind = iota + 1
	KindUint
	KindBytes
	KindFixedBytes
	KindArray
)

// Type is a declared ABI type. Size is the bit width for uint<N> and the byte
// length for bytes<N>; Elem is set for dynamic arrays.
type Type struct {
	Kind Kind
	Size int
	Elem *Type
}

var (
	Address      = Type{Kind: KindAddress}
	Uint8        = Type{Kind: KindUint, Size: 8}
	Uint256      = Type{Kind: KindUint, Size: 256}
	Bytes        = Type{Kind: KindBytes}
	Bytes32      = Type{Kind: KindFixedBytes, Size: 32}
	AddressArray = Type{Kind: KindArray, Elem: &Address}
)

// Uint returns the uint<bits> type. bits must be a multiple of 8 in [8, 256].
func Uint(bits int) Type {
	return Type{Kind: KindUint, Size: bits}
}

// FixedBytes returns the bytes<n> type, 1 <= n <= 32.
func FixedBytes(n int) Type {
	return Type{Kind: KindFixedBytes, Size: n}
}

// ArrayOf returns the dynamic array type elem[]. Only static elements are supported.
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: KindArray, Elem: &e}
}

// IsDynamic reports whether values of t are encoded in the tail of a tuple.
func (t Type) IsDynamic() bool {
	return t.Kind == KindBytes || t.Kind == KindArray
}

// String returns the canonical type name used in function signatures.
func (t Type) String() string {
	switch t.Kind {
	case KindAddress:
		return "address"
	case KindUint:
		return fmt.Sprintf("uint%d", t.Size)
	case KindBytes:
		return "bytes"
	case KindFixedBytes:
		return fmt.Sprintf("bytes%d", t.Size)
	case KindArray:
		if t.Elem == nil {
			return "invalid[]"
		}
		return t.Elem.String() + "[]"
	}
	return "invalid"
}

func (t Type) validate() error {
	switch t.Kind {
	case KindAddress, KindBytes:
		return nil
	case KindUint:
		if t.Size < 8 || t.Size > 256 || t.Size%8 != 0 {
			return fmt.Errorf("%w: uint%d", ErrInvalidType, t.Size)
		}
		return nil
	case KindFixedBytes:
		if t.Size < 1 || t.Size > 32 {
			return fmt.Errorf("%w: bytes%d", ErrInvalidType, t.Size)
		}
		return nil
	case KindArray:
		if t.Elem == nil || t.Elem.IsDynamic() {
			return fmt.Errorf("%w: arrays need a static element", ErrInvalidType)
		}
		return t.Elem.validate()
	}
	return fmt.Errorf("%w: kind %d", ErrInvalidType, t.Kind)
}

// Signature builds the canonical function signature name(t1,t2,...).
func Signature(name string, types ...Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}
