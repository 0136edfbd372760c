package safe

import (
	"context"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/luxfi/safekit/pkg/logger"
)

// AssetKind selects which transfer builder and gateway payload are used.
type AssetKind string

const (
	AssetEther  AssetKind = "ether"
	AssetErc20  AssetKind = "erc20"
	AssetErc721 AssetKind = "erc721"
)

var ErrUnknownAsset = errors.New("safe: unknown asset kind")

// Asset describes what is being sent. Token and Decimals apply to ERC-20,
// Token and TokenID to ERC-721.
type Asset struct {
	Kind     AssetKind
	Token    common.Address
	Decimals uint8
	TokenID  *uint256.Int
}

// TransferParams are the inputs of PrepareTransfer. When Owners is nil the
// owner list is read from the chain.
type TransferParams struct {
	Safe     common.Address
	Key      *secp256k1.PrivateKey
	Owners   []common.Address
	Receiver common.Address
	// Amount is wei for ether and whole tokens for ERC-20.
	Amount *uint256.Int
	Asset  Asset
}

// Transfer is a built, hashed and signed transfer.
type Transfer struct {
	Transaction SafeTransaction
	Hash        [32]byte
	Signature   Signature
	Signer      common.Address
	Request     TransferRequest
}

// PrepareTransfer runs the full send flow: owner check, nonce read, build,
// on-chain hash, sign and gateway payload.
func PrepareTransfer(ctx context.Context, caller Caller, p TransferParams) (*Transfer, error) {
	owners := p.Owners
	if owners == nil {
		var err error
		if owners, err = ReadOwners(ctx, caller, p.Safe); err != nil {
			return nil, err
		}
	}
	signer, err := VerifyOwner(p.Key, owners)
	if err != nil {
		return nil, err
	}

	nonce, err := ReadNonce(ctx, caller, p.Safe)
	if err != nil {
		return nil, err
	}

	amount := p.Amount
	if amount == nil {
		amount = new(uint256.Int)
	}
	var tx SafeTransaction
	switch p.Asset.Kind {
	case AssetEther, "":
		tx = BuildEthTransfer(p.Receiver, amount, nonce)
	case AssetErc20:
		scaled, err := ScaleTokenAmount(amount, p.Asset.Decimals)
		if err != nil {
			return nil, err
		}
		tx = BuildErc20Transfer(p.Receiver, p.Asset.Token, scaled, nonce)
	case AssetErc721:
		tx = BuildErc721Transfer(p.Safe, p.Receiver, p.Asset.Token, p.Asset.TokenID, nonce)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAsset, p.Asset.Kind)
	}

	hash, err := ComputeHash(ctx, caller, p.Safe, tx)
	if err != nil {
		return nil, err
	}
	sig, err := Sign(p.Key, hash)
	if err != nil {
		return nil, err
	}

	t := &Transfer{Transaction: tx, Hash: hash, Signature: sig, Signer: signer}
	switch p.Asset.Kind {
	case AssetErc20:
		t.Request = tx.ToSendErc20Request(signer, hash, sig)
	case AssetErc721:
		t.Request = tx.ToSendErc721Request(signer, hash, sig)
	default:
		t.Request = tx.ToSendEthRequest(signer, hash, sig)
	}
	logger.Info("Transfer prepared",
		"safe", p.Safe.Hex(),
		"kind", string(t.Request.RequestType()),
		"nonce", tx.Nonce.Dec(),
		"hash", t.Request.Hash(),
	)
	return t, nil
}
