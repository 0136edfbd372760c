package safe

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

var (
	ErrCantTransfer = errors.New("safe: signer is not an owner")
	ErrInvalidOwner = errors.New("safe: invalid owner address")
	ErrOwnerExists  = errors.New("safe: owner already added")
)

// VerifyOwner returns the address of key if it is one of owners. This is a
// usability check before signing; the contract enforces ownership itself.
func VerifyOwner(key *secp256k1.PrivateKey, owners []common.Address) (common.Address, error) {
	if key == nil {
		return common.Address{}, fmt.Errorf("%w: no credentials", ErrCantTransfer)
	}
	addr := AddressFromKey(key)
	if !lo.Contains(owners, addr) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrCantTransfer, addr.Hex())
	}
	return addr, nil
}

// ThresholdFor is the confirmation count used for a Safe with ownerCount
// owners: all but two, and never less than one.
func ThresholdFor(ownerCount int) uint8 {
	return uint8(max(1, min(ownerCount-2, math.MaxUint8)))
}

// BuildAddOwner adds newOwner to the Safe described by info and moves the
// threshold to ThresholdFor the grown owner set.
func BuildAddOwner(info Info, newOwner common.Address) (SafeTransaction, error) {
	if newOwner == (common.Address{}) {
		return SafeTransaction{}, fmt.Errorf("%w: zero address", ErrInvalidOwner)
	}
	if lo.Contains(info.Owners, newOwner) {
		return SafeTransaction{}, fmt.Errorf("%w: %s", ErrOwnerExists, newOwner.Hex())
	}
	data := EncodeAddOwnerWithThreshold(newOwner, ThresholdFor(len(info.Owners)+1))
	return BuildCall(info.Address, nil, data, Call, &info.Nonce), nil
}

// ParseOwner parses a user supplied owner address.
func ParseOwner(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidOwner, s)
	}
	return common.HexToAddress(s), nil
}
