package safe

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/luxfi/safekit/pkg/abi"
)

// Info is the on-chain state of a Safe that transaction builders consume.
type Info struct {
	Address   common.Address
	Owners    []common.Address
	Threshold uint64
	Nonce     uint256.Int
}

func readUint(ctx context.Context, caller Caller, safeAddress common.Address, method string, data []byte) (*uint256.Int, error) {
	out, err := call(ctx, caller, safeAddress, method, data, 32)
	if err != nil {
		return nil, err
	}
	v, _, err := abi.DecodeValue(abi.Uint256, out)
	if err != nil {
		return nil, &ChainCallError{Method: method, Err: err}
	}
	return v.(*uint256.Int), nil
}

// ReadNonce returns the nonce the next Safe transaction must carry.
func ReadNonce(ctx context.Context, caller Caller, safeAddress common.Address) (*uint256.Int, error) {
	return readUint(ctx, caller, safeAddress, SigNonce, EncodeNonce())
}

func ReadThreshold(ctx context.Context, caller Caller, safeAddress common.Address) (uint64, error) {
	n, err := readUint(ctx, caller, safeAddress, SigGetThreshold, EncodeGetThreshold())
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, &ChainCallError{Method: SigGetThreshold, Err: abi.ErrValueOutOfRange}
	}
	return n.Uint64(), nil
}

// ReadOwners returns the owner list in on-chain linked-list order.
func ReadOwners(ctx context.Context, caller Caller, safeAddress common.Address) ([]common.Address, error) {
	out, err := call(ctx, caller, safeAddress, SigGetOwners, EncodeGetOwners(), 64)
	if err != nil {
		return nil, err
	}
	vals, err := abi.DecodeArgs([]abi.Type{abi.AddressArray}, out)
	if err != nil {
		return nil, &ChainCallError{Method: SigGetOwners, Err: err}
	}
	return vals[0].([]common.Address), nil
}

// LoadInfo reads owners, threshold and nonce of the Safe.
func LoadInfo(ctx context.Context, caller Caller, safeAddress common.Address) (Info, error) {
	info := Info{Address: safeAddress}
	owners, err := ReadOwners(ctx, caller, safeAddress)
	if err != nil {
		return info, err
	}
	threshold, err := ReadThreshold(ctx, caller, safeAddress)
	if err != nil {
		return info, err
	}
	nonce, err := ReadNonce(ctx, caller, safeAddress)
	if err != nil {
		return info, err
	}
	info.Owners = owners
	info.Threshold = threshold
	info.Nonce.Set(nonce)
	return info, nil
}
