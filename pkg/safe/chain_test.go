package safe

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/luxfi/safekit/pkg/abi"
)

// fakeChain answers the Safe reads this package performs. getTransactionHash
// is answered with HashLocal over the decoded arguments.
type fakeChain struct {
	chainID   uint64
	owners    []common.Address
	threshold uint64
	nonce     uint64
	err       error
	empty     bool
	calls     []string
}

var hashCallTypes = []abi.Type{
	abi.Address, abi.Uint256, abi.Bytes, abi.Uint8,
	abi.Uint256, abi.Uint256, abi.Uint256,
	abi.Address, abi.Address, abi.Uint256,
}

func decodeHashCall(data []byte) (SafeTransaction, error) {
	vals, err := abi.DecodeArgs(hashCallTypes, data)
	if err != nil {
		return SafeTransaction{}, err
	}
	u := func(i int) uint256.Int { return *vals[i].(*uint256.Int) }
	return SafeTransaction{
		To:             vals[0].(common.Address),
		Value:          u(1),
		Data:           vals[2].([]byte),
		Operation:      Operation(vals[3].(*uint256.Int).Uint64()),
		SafeTxGas:      u(4),
		BaseGas:        u(5),
		GasPrice:       u(6),
		GasToken:       vals[7].(common.Address),
		RefundReceiver: vals[8].(common.Address),
		Nonce:          u(9),
	}, nil
}

func (f *fakeChain) CallContract(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.empty {
		return nil, nil
	}
	var sel [4]byte
	copy(sel[:], data)
	switch sel {
	case abi.Selector(SigNonce):
		f.calls = append(f.calls, SigNonce)
		return abi.EncodeValue(abi.Uint256, f.nonce)
	case abi.Selector(SigGetThreshold):
		f.calls = append(f.calls, SigGetThreshold)
		return abi.EncodeValue(abi.Uint256, f.threshold)
	case abi.Selector(SigGetOwners):
		f.calls = append(f.calls, SigGetOwners)
		return abi.EncodeArgs(abi.Arg{Type: abi.AddressArray, Value: f.owners})
	case abi.Selector(SigGetTransactionHash):
		f.calls = append(f.calls, SigGetTransactionHash)
		tx, err := decodeHashCall(data[4:])
		if err != nil {
			return nil, err
		}
		h := HashLocal(to, f.chainID, tx)
		return h[:], nil
	}
	return nil, errors.New("execution reverted")
}
