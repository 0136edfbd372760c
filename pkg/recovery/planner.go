// Package recovery plans owner swaps on a Safe and packages them into a
// single transaction.
//
// Owners are stored on-chain as a linked list headed by Sentinel, so every
// swapOwner call names the predecessor of the owner it replaces. Swaps are
// planned from the tail so that no earlier swap changes a predecessor that a
// later swap still needs.
package recovery

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/samber/lo"

	"github.com/luxfi/safekit/pkg/abi"
	"github.com/luxfi/safekit/pkg/logger"
	"github.com/luxfi/safekit/pkg/safe"
)

// Sentinel is the head marker of the Safe owner list.
var Sentinel = common.HexToAddress("0x0000000000000000000000000000000000000001")

// SwapOwnerOp replaces OldOwner with NewOwner; PrevOwner points at OldOwner.
type SwapOwnerOp struct {
	PrevOwner common.Address
	OldOwner  common.Address
	NewOwner  common.Address
}

// Calldata encodes the op as a swapOwner call on the Safe.
func (op SwapOwnerOp) Calldata() []byte {
	return safe.EncodeSwapOwner(op.PrevOwner, op.OldOwner, op.NewOwner)
}

// PlanSwaps walks currentOwners from the tail and replaces every owner that
// is neither kept nor already in swapIn with the next candidate popped from
// the tail of swapIn. None of the inputs are modified.
func PlanSwaps(currentOwners, keep, swapIn []common.Address) ([]SwapOwnerOp, error) {
	if dups := lo.FindDuplicates(currentOwners); len(dups) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateOwner, dups[0].Hex())
	}
	remaining := append([]common.Address(nil), swapIn...)
	var ops []SwapOwnerOp
	for i := len(currentOwners) - 1; i >= 0; i-- {
		owner := currentOwners[i]
		if lo.Contains(keep, owner) || lo.Contains(swapIn, owner) {
			continue
		}

		var candidate common.Address
		found := false
		for len(remaining) > 0 {
			candidate = remaining[len(remaining)-1]
			remaining = remaining[:len(remaining)-1]
			if !lo.Contains(currentOwners, candidate) {
				found = true
				break
			}
		}
		if !found {
			break
		}

		prev := Sentinel
		if i > 0 {
			prev = currentOwners[i-1]
		}
		ops = append(ops, SwapOwnerOp{PrevOwner: prev, OldOwner: owner, NewOwner: candidate})
	}
	if len(remaining) > 0 {
		return nil, fmt.Errorf("%w: %d left", ErrIncompleteRecovery, len(remaining))
	}
	return ops, nil
}

// EncodeMultiSendEntry encodes one sub-call as the tuple
// (uint8 operation, address to, uint256 value, bytes data).
func EncodeMultiSendEntry(op safe.Operation, to common.Address, value *uint256.Int, data []byte) ([]byte, error) {
	return abi.EncodeArgs(
		abi.Uint8Arg(uint8(op)),
		abi.AddressArg(to),
		abi.Uint256Arg(value),
		abi.BytesArg(data),
	)
}

// Package turns ops into one Safe transaction: a direct call for a single
// op, or a delegate call to multiSend so that several swaps apply atomically.
func Package(safeAddress, multiSendAddress common.Address, ops []SwapOwnerOp, nonce *uint256.Int) (safe.SafeTransaction, error) {
	switch len(ops) {
	case 0:
		return safe.SafeTransaction{}, &NoRecoveryNecessaryError{Safe: safeAddress}
	case 1:
		logger.Debug("Packaging single owner swap", "safe", safeAddress.Hex(), "old", ops[0].OldOwner.Hex())
		return safe.BuildCall(safeAddress, nil, ops[0].Calldata(), safe.Call, nonce), nil
	}

	var batch []byte
	zero := new(uint256.Int)
	for _, op := range ops {
		entry, err := EncodeMultiSendEntry(safe.Call, safeAddress, zero, op.Calldata())
		if err != nil {
			return safe.SafeTransaction{}, err
		}
		batch = append(batch, entry...)
	}
	logger.Debug("Packaging owner swaps as multi-send", "safe", safeAddress.Hex(), "ops", len(ops))
	return safe.BuildCall(multiSendAddress, nil, safe.EncodeMultiSend(batch), safe.DelegateCall, nonce), nil
}

// Planner builds recovery transactions against a fixed multi-send contract.
type Planner struct {
	MultiSend common.Address
}

func NewPlanner(multiSend common.Address) *Planner {
	return &Planner{MultiSend: multiSend}
}

// BuildRecoverTransaction installs swapIn without removing keep. The number
// of owners does not change.
func (p *Planner) BuildRecoverTransaction(info safe.Info, keep, swapIn []common.Address) (safe.SafeTransaction, []SwapOwnerOp, error) {
	ops, err := PlanSwaps(info.Owners, keep, swapIn)
	if err != nil {
		return safe.SafeTransaction{}, nil, err
	}
	tx, err := Package(info.Address, p.MultiSend, ops, &info.Nonce)
	if err != nil {
		return safe.SafeTransaction{}, nil, err
	}
	return tx, ops, nil
}
