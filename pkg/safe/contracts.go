package safe

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/luxfi/safekit/pkg/abi"
)

// Canonical signatures of the contract functions this package calls.
const (
	SigNonce                 = "nonce()"
	SigGetOwners             = "getOwners()"
	SigGetThreshold          = "getThreshold()"
	SigGetTransactionHash    = "getTransactionHash(address,uint256,bytes,uint8,uint256,uint256,uint256,address,address,uint256)"
	SigTransfer              = "transfer(address,uint256)"
	SigTransferFrom          = "transferFrom(address,address,uint256)"
	SigMultiSend             = "multiSend(bytes)"
	SigSwapOwner             = "swapOwner(address,address,address)"
	SigAddOwnerWithThreshold = "addOwnerWithThreshold(address,uint8)"
	SigExecTransaction       = "execTransaction(address,uint256,bytes,uint8,uint256,uint256,uint256,address,address,bytes)"
)

func EncodeNonce() []byte { return abi.MustEncodeCall(SigNonce) }

func EncodeGetOwners() []byte { return abi.MustEncodeCall(SigGetOwners) }

func EncodeGetThreshold() []byte { return abi.MustEncodeCall(SigGetThreshold) }

// EncodeTransfer encodes ERC-20 transfer(to, amount).
func EncodeTransfer(to common.Address, amount *uint256.Int) []byte {
	return abi.MustEncodeCall(SigTransfer, abi.AddressArg(to), abi.Uint256Arg(amount))
}

// EncodeTransferFrom encodes ERC-721 transferFrom(from, to, tokenID).
func EncodeTransferFrom(from, to common.Address, tokenID *uint256.Int) []byte {
	return abi.MustEncodeCall(SigTransferFrom, abi.AddressArg(from), abi.AddressArg(to), abi.Uint256Arg(tokenID))
}

// EncodeSwapOwner encodes swapOwner(prevOwner, oldOwner, newOwner).
func EncodeSwapOwner(prevOwner, oldOwner, newOwner common.Address) []byte {
	return abi.MustEncodeCall(SigSwapOwner, abi.AddressArg(prevOwner), abi.AddressArg(oldOwner), abi.AddressArg(newOwner))
}

// EncodeAddOwnerWithThreshold encodes addOwnerWithThreshold(owner, threshold).
func EncodeAddOwnerWithThreshold(owner common.Address, threshold uint8) []byte {
	return abi.MustEncodeCall(SigAddOwnerWithThreshold, abi.AddressArg(owner), abi.Uint8Arg(threshold))
}

// EncodeMultiSend wraps a concatenation of encoded sub-calls in multiSend(bytes).
func EncodeMultiSend(transactions []byte) []byte {
	return abi.MustEncodeCall(SigMultiSend, abi.BytesArg(transactions))
}

// txArgs returns the first nine SafeTransaction arguments shared by
// getTransactionHash and execTransaction.
func txArgs(tx SafeTransaction) []abi.Arg {
	return []abi.Arg{
		abi.AddressArg(tx.To),
		abi.Uint256Arg(&tx.Value),
		abi.BytesArg(tx.Data),
		abi.Uint8Arg(uint8(tx.Operation)),
		abi.Uint256Arg(&tx.SafeTxGas),
		abi.Uint256Arg(&tx.BaseGas),
		abi.Uint256Arg(&tx.GasPrice),
		abi.AddressArg(tx.GasToken),
		abi.AddressArg(tx.RefundReceiver),
	}
}

// EncodeGetTransactionHash encodes getTransactionHash with all ten fields in
// declared order.
func EncodeGetTransactionHash(tx SafeTransaction) ([]byte, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return abi.EncodeCall(SigGetTransactionHash, append(txArgs(tx), abi.Uint256Arg(&tx.Nonce))...)
}

// EncodeExecTransaction returns calldata for Safe.execTransaction() with packed
// owner signatures (see PackSignatures).
func EncodeExecTransaction(tx SafeTransaction, signatures []byte) ([]byte, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return abi.EncodeCall(SigExecTransaction, append(txArgs(tx), abi.BytesArg(signatures))...)
}
