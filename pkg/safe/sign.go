package safe

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/common"

	"github.com/luxfi/safekit/pkg/encoding"
)

var (
	ErrInvalidKey       = errors.New("safe: invalid private key")
	ErrInvalidSignature = errors.New("safe: invalid signature")
)

// Signature is an owner signature in the r||s||v layout the Safe contract
// checks, with v = 27 + recovery id.
type Signature struct {
	R [32]byte
	S [32]byte
	V byte
}

// Bytes returns the 65-byte r||s||v form.
func (s Signature) Bytes() []byte {
	out := make([]byte, 65)
	copy(out[:32], s.R[:])
	copy(out[32:64], s.S[:])
	out[64] = s.V
	return out
}

// String returns the 130 hex character r||s||v form without prefix.
func (s Signature) String() string {
	return hex.EncodeToString(s.Bytes())
}

// Hex returns the 0x-prefixed form used by the gateway.
func (s Signature) Hex() string {
	return "0x" + s.String()
}

// ParseSignature parses 65 bytes of hex, with or without 0x.
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil || len(b) != 65 {
		return sig, fmt.Errorf("%w: want 130 hex characters", ErrInvalidSignature)
	}
	copy(sig.R[:], b[:32])
	copy(sig.S[:], b[32:64])
	sig.V = b[64]
	return sig, nil
}

// PrivateKeyFromHex parses a 32-byte secp256k1 scalar, with or without 0x.
func PrivateKeyFromHex(s string) (*secp256k1.PrivateKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return PrivateKeyFromBytes(b)
}

// PrivateKeyFromBytes rejects zero and out-of-range scalars.
func PrivateKeyFromBytes(b []byte) (*secp256k1.PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalidKey, len(b))
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow || scalar.IsZero() {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidKey)
	}
	return secp256k1.NewPrivateKey(&scalar), nil
}

// AddressFromKey derives the Ethereum address of key.
func AddressFromKey(key *secp256k1.PrivateKey) common.Address {
	return encoding.PubKeyToAddress(key.PubKey())
}

// Sign signs hash with key. Nonces follow RFC 6979 so the result is
// deterministic for a given (key, hash).
func Sign(key *secp256k1.PrivateKey, hash [32]byte) (Signature, error) {
	var sig Signature
	if key == nil || key.Key.IsZero() {
		return sig, ErrInvalidKey
	}
	// [27 + recid] || r || s
	compact := ecdsa.SignCompact(key, hash[:], false)
	copy(sig.R[:], compact[1:33])
	copy(sig.S[:], compact[33:65])
	sig.V = compact[0]
	return sig, nil
}

// RecoverSigner returns the address whose key produced sig over hash.
func RecoverSigner(hash [32]byte, sig Signature) (common.Address, error) {
	if sig.V != 27 && sig.V != 28 {
		return common.Address{}, fmt.Errorf("%w: v=%d", ErrInvalidSignature, sig.V)
	}
	compact := make([]byte, 65)
	compact[0] = sig.V
	copy(compact[1:33], sig.R[:])
	copy(compact[33:], sig.S[:])
	pub, _, err := ecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return encoding.PubKeyToAddress(pub), nil
}

// PackSignatures concatenates owner signatures for execTransaction. The Safe
// contract requires them ordered by signer address ascending.
func PackSignatures(sigs ...Signature) []byte {
	out := make([]byte, 0, 65*len(sigs))
	for _, s := range sigs {
		out = append(out, s.Bytes()...)
	}
	return out
}
