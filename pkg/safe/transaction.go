// Package safe builds, hashes and signs multisig Safe transactions.
//
// A SafeTransaction is the 10-field structure the Safe contract's
// execTransaction expects. Builders are pure; hashing goes through a Caller
// (an eth_call transport) so the contract stays the source of truth for the
// hash that owners sign.
package safe

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrInvalidOperation = errors.New("safe: invalid operation")
	ErrAmountOverflow   = errors.New("safe: amount overflows uint256")
)

// SafeTransaction is an immutable Safe transaction. Integer fields are held by
// value so copies never share state; Data is copied by the builders.
type SafeTransaction struct {
	To             common.Address
	Value          uint256.Int
	Data           []byte
	Operation      Operation
	SafeTxGas      uint256.Int
	BaseGas        uint256.Int
	GasPrice       uint256.Int
	GasToken       common.Address
	RefundReceiver common.Address
	Nonce          uint256.Int
}

// BuildCall returns a transaction with zero gas and refund parameters.
func BuildCall(to common.Address, value *uint256.Int, data []byte, op Operation, nonce *uint256.Int) SafeTransaction {
	tx := SafeTransaction{
		To:        to,
		Data:      bytes.Clone(data),
		Operation: op,
	}
	if tx.Data == nil {
		tx.Data = []byte{}
	}
	if value != nil {
		tx.Value.Set(value)
	}
	if nonce != nil {
		tx.Nonce.Set(nonce)
	}
	return tx
}

// BuildEthTransfer sends value wei of the native currency to receiver.
func BuildEthTransfer(receiver common.Address, value, nonce *uint256.Int) SafeTransaction {
	return BuildCall(receiver, value, nil, Call, nonce)
}

// BuildErc20Transfer calls transfer(receiver, amount) on token.
func BuildErc20Transfer(receiver, token common.Address, amount, nonce *uint256.Int) SafeTransaction {
	return BuildCall(token, nil, EncodeTransfer(receiver, amount), Call, nonce)
}

// BuildErc721Transfer calls transferFrom(receiver, sender, tokenID) on token.
// The argument order matches the deployed app, not the parameter names.
func BuildErc721Transfer(sender, receiver, token common.Address, tokenID, nonce *uint256.Int) SafeTransaction {
	return BuildCall(token, nil, EncodeTransferFrom(receiver, sender, tokenID), Call, nonce)
}

// ScaleTokenAmount converts a whole-token amount into base units. A nil
// amount scales to zero.
func ScaleTokenAmount(amount *uint256.Int, decimals uint8) (*uint256.Int, error) {
	if amount == nil {
		return new(uint256.Int), nil
	}
	if decimals > 77 {
		return nil, fmt.Errorf("%w: 10^%d", ErrAmountOverflow, decimals)
	}
	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	out, overflow := new(uint256.Int).MulOverflow(amount, scale)
	if overflow {
		return nil, fmt.Errorf("%w: %s * 10^%d", ErrAmountOverflow, amount.Dec(), decimals)
	}
	return out, nil
}

// Validate checks the invariants the Safe contract relies on.
func (tx SafeTransaction) Validate() error {
	if !tx.Operation.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidOperation, uint8(tx.Operation))
	}
	return nil
}

// Clone returns a deep copy of tx.
func (tx SafeTransaction) Clone() SafeTransaction {
	tx.Data = bytes.Clone(tx.Data)
	if tx.Data == nil {
		tx.Data = []byte{}
	}
	return tx
}

// Equal reports whether two transactions carry the same fields.
func (tx SafeTransaction) Equal(other SafeTransaction) bool {
	return tx.To == other.To &&
		tx.Value.Eq(&other.Value) &&
		bytes.Equal(tx.Data, other.Data) &&
		tx.Operation == other.Operation &&
		tx.SafeTxGas.Eq(&other.SafeTxGas) &&
		tx.BaseGas.Eq(&other.BaseGas) &&
		tx.GasPrice.Eq(&other.GasPrice) &&
		tx.GasToken == other.GasToken &&
		tx.RefundReceiver == other.RefundReceiver &&
		tx.Nonce.Eq(&other.Nonce)
}
