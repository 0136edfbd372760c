package abi

import (
	"hash"

	"golang.org/x/crypto/sha3"
)

// newKeccak256 returns a new legacy Keccak-256 hasher (Ethereum-compatible).
func newKeccak256() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// Keccak256 computes keccak256 over the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	h := newKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// Selector returns the first 4 bytes of keccak256(signature).
func Selector(signature string) [4]byte {
	var sel [4]byte
	copy(sel[:], Keccak256([]byte(signature)))
	return sel
}
