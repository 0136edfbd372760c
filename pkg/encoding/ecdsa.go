package encoding

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// EncodeS256PubKey encodes a secp256k1 public key to 64 bytes (32 bytes X + 32 bytes Y).
// This uses fixed-size encoding to avoid ambiguity when X or Y have leading zeros.
func EncodeS256PubKey(pubKey *secp256k1.PublicKey) []byte {
	// SerializeUncompressed is 0x04 || X || Y with both coordinates padded.
	return pubKey.SerializeUncompressed()[1:]
}

// PubKeyToAddress returns the Ethereum address of pubKey: the last 20 bytes
// of keccak256(X || Y).
func PubKeyToAddress(pubKey *secp256k1.PublicKey) common.Address {
	h := sha3.NewLegacyKeccak256()
	h.Write(EncodeS256PubKey(pubKey))
	return common.BytesToAddress(h.Sum(nil)[12:])
}
