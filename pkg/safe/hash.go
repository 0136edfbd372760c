package safe

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/luxfi/safekit/pkg/abi"
	"github.com/luxfi/safekit/pkg/logger"
)

// Caller performs read-only contract calls (eth_call at the latest block).
type Caller interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

var ErrChainCall = errors.New("safe: chain call failed")

// ChainCallError reports a failed or empty contract read.
type ChainCallError struct {
	Method string
	Err    error
}

func (e *ChainCallError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("safe: %s returned no result", e.Method)
	}
	return fmt.Sprintf("safe: %s: %v", e.Method, e.Err)
}

func (e *ChainCallError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrChainCall}
	}
	return []error{ErrChainCall, e.Err}
}

// call runs one read and enforces a minimum result length.
func call(ctx context.Context, caller Caller, to common.Address, method string, data []byte, minLen int) ([]byte, error) {
	logger.Debug("Contract read", "method", method, "to", to.Hex())
	out, err := caller.CallContract(ctx, to, data)
	if err != nil {
		return nil, &ChainCallError{Method: method, Err: err}
	}
	if len(out) == 0 {
		return nil, &ChainCallError{Method: method}
	}
	if len(out) < minLen {
		return nil, &ChainCallError{Method: method, Err: fmt.Errorf("short result of %d bytes", len(out))}
	}
	return out, nil
}

// ComputeHash asks the Safe at safeAddress for the hash of tx. The 32-byte
// result is returned verbatim.
func ComputeHash(ctx context.Context, caller Caller, safeAddress common.Address, tx SafeTransaction) ([32]byte, error) {
	var hash [32]byte
	data, err := EncodeGetTransactionHash(tx)
	if err != nil {
		return hash, err
	}
	out, err := call(ctx, caller, safeAddress, SigGetTransactionHash, data, 32)
	if err != nil {
		return hash, err
	}
	copy(hash[:], out[:32])
	logger.Debug("Safe transaction hash", "safe", safeAddress.Hex(), "hash", hexutil.Encode(hash[:]))
	return hash, nil
}

// Safe EIP-712 type hashes.
var (
	domainTypehash = abi.Keccak256([]byte(
		"EIP712Domain(uint256 chainId,address verifyingContract)",
	))
	safeTxTypehash = abi.Keccak256([]byte(
		"SafeTx(address to,uint256 value,bytes data,uint8 operation," +
			"uint256 safeTxGas,uint256 baseGas,uint256 gasPrice," +
			"address gasToken,address refundReceiver,uint256 nonce)",
	))
)

// DomainSeparator returns the EIP-712 domain separator of a Safe (v1.3+).
func DomainSeparator(safeAddress common.Address, chainID uint64) [32]byte {
	var out [32]byte
	cid := uint256.NewInt(chainID).Bytes32()
	copy(out[:], abi.Keccak256(domainTypehash, cid[:], common.LeftPadBytes(safeAddress.Bytes(), 32)))
	return out
}

// HashLocal computes the same hash getTransactionHash returns, without a
// chain read. Safes older than v1.3 use a different domain and will not match.
func HashLocal(safeAddress common.Address, chainID uint64, tx SafeTransaction) [32]byte {
	word := func(n *uint256.Int) []byte {
		b := n.Bytes32()
		return b[:]
	}
	addr := func(a common.Address) []byte {
		return common.LeftPadBytes(a.Bytes(), 32)
	}

	// keccak256(SAFE_TX_TYPEHASH || to || value || keccak256(data) || operation ||
	//           safeTxGas || baseGas || gasPrice || gasToken || refundReceiver || nonce)
	encoded := make([]byte, 0, 32*11)
	encoded = append(encoded, safeTxTypehash...)
	encoded = append(encoded, addr(tx.To)...)
	encoded = append(encoded, word(&tx.Value)...)
	encoded = append(encoded, abi.Keccak256(tx.Data)...)
	encoded = append(encoded, word(uint256.NewInt(uint64(tx.Operation)))...)
	encoded = append(encoded, word(&tx.SafeTxGas)...)
	encoded = append(encoded, word(&tx.BaseGas)...)
	encoded = append(encoded, word(&tx.GasPrice)...)
	encoded = append(encoded, addr(tx.GasToken)...)
	encoded = append(encoded, addr(tx.RefundReceiver)...)
	encoded = append(encoded, word(&tx.Nonce)...)
	safeTxHash := abi.Keccak256(encoded)

	domain := DomainSeparator(safeAddress, chainID)
	var out [32]byte
	copy(out[:], abi.Keccak256([]byte{0x19, 0x01}, domain[:], safeTxHash))
	return out
}
