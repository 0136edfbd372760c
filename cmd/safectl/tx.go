package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v3"

	"github.com/luxfi/safekit/pkg/logger"
	"github.com/luxfi/safekit/pkg/safe"
)

// txFlags returns fresh flags on every call; flags hold their parsed state.
func txFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "to", Usage: "Target address", Required: true},
		&cli.StringFlag{Name: "value", Usage: "Value in wei", Value: "0"},
		&cli.StringFlag{Name: "data", Usage: "Hex calldata"},
		&cli.UintFlag{Name: "operation", Usage: "0 = call, 1 = delegatecall", Value: 0},
		&cli.StringFlag{Name: "nonce", Usage: "Safe nonce (read from chain when omitted)"},
	}
}

func parseOperation(n uint) (safe.Operation, error) {
	if n > uint(safe.DelegateCall) {
		return 0, fmt.Errorf("%w: %d", safe.ErrInvalidOperation, n)
	}
	return safe.Operation(n), nil
}

func transactionFromFlags(ctx context.Context, e *env, c *cli.Command, safeAddress common.Address) (safe.SafeTransaction, error) {
	to, err := parseAddress(c.String("to"))
	if err != nil {
		return safe.SafeTransaction{}, err
	}
	value, err := parseUint256(c.String("value"))
	if err != nil {
		return safe.SafeTransaction{}, err
	}
	data, err := parseData(c.String("data"))
	if err != nil {
		return safe.SafeTransaction{}, err
	}
	op, err := parseOperation(c.Uint("operation"))
	if err != nil {
		return safe.SafeTransaction{}, err
	}
	nonce, err := parseUint256(c.String("nonce"))
	if err != nil {
		return safe.SafeTransaction{}, err
	}
	if !c.IsSet("nonce") {
		if e.client == nil {
			return safe.SafeTransaction{}, fmt.Errorf("--nonce is required offline")
		}
		if nonce, err = safe.ReadNonce(ctx, e.client, safeAddress); err != nil {
			return safe.SafeTransaction{}, err
		}
	}
	tx := safe.BuildCall(to, value, data, op, nonce)
	return tx, tx.Validate()
}

func hashCommand() *cli.Command {
	return &cli.Command{
		Name:  "hash",
		Usage: "Compute the Safe transaction hash of a call",
		Flags: append(txFlags(),
			&cli.BoolFlag{Name: "offline", Usage: "Compute the EIP-712 hash locally without RPC"},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := newEnv(ctx, c, !c.Bool("offline"))
			if err != nil {
				return err
			}
			defer e.Close()

			safeAddress, err := e.safeAddress()
			if err != nil {
				return err
			}
			tx, err := transactionFromFlags(ctx, e, c, safeAddress)
			if err != nil {
				return err
			}

			var hash [32]byte
			if c.Bool("offline") {
				hash = safe.HashLocal(safeAddress, e.cfg.ChainID, tx)
			} else if hash, err = e.onChainHash(ctx, safeAddress, tx); err != nil {
				return err
			}
			return e.printJSON(newTxView(safeAddress, tx, &hash))
		},
	}
}

func signCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "Sign a Safe transaction hash with the owner key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "hash", Usage: "32-byte Safe transaction hash", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := newEnv(ctx, c, false)
			if err != nil {
				return err
			}
			hash, err := parseHash(c.String("hash"))
			if err != nil {
				return err
			}
			key, err := e.loadKey()
			if err != nil {
				return err
			}
			sig, err := safe.Sign(key, hash)
			if err != nil {
				return err
			}
			return e.printJSON(map[string]string{
				"hash":      hexutil.Encode(hash[:]),
				"signer":    safe.AddressFromKey(key).Hex(),
				"signature": sig.Hex(),
			})
		},
	}
}

func transferCommand() *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Build, hash and sign an asset transfer from the Safe",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "Receiver address", Required: true},
			&cli.StringFlag{Name: "amount", Usage: "Wei for ether, whole tokens for erc20", Value: "0"},
			&cli.StringFlag{Name: "asset", Usage: "ether, erc20 or erc721", Value: string(safe.AssetEther)},
			&cli.StringFlag{Name: "token", Usage: "Token contract address"},
			&cli.UintFlag{Name: "decimals", Usage: "ERC-20 decimals", Value: 18},
			&cli.StringFlag{Name: "token-id", Usage: "ERC-721 token id"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := newEnv(ctx, c, true)
			if err != nil {
				return err
			}
			defer e.Close()

			safeAddress, err := e.safeAddress()
			if err != nil {
				return err
			}
			receiver, err := parseAddress(c.String("to"))
			if err != nil {
				return err
			}
			amount, err := parseUint256(c.String("amount"))
			if err != nil {
				return err
			}
			if c.Uint("decimals") > 255 {
				return fmt.Errorf("decimals out of range")
			}
			asset := safe.Asset{Kind: safe.AssetKind(c.String("asset")), Decimals: uint8(c.Uint("decimals"))}
			if asset.Kind != safe.AssetEther {
				if asset.Token, err = parseAddress(c.String("token")); err != nil {
					return err
				}
			}
			if asset.Kind == safe.AssetErc721 {
				if asset.TokenID, err = parseUint256(c.String("token-id")); err != nil {
					return err
				}
			}
			key, err := e.loadKey()
			if err != nil {
				return err
			}

			t, err := safe.PrepareTransfer(ctx, e.client, safe.TransferParams{
				Safe:     safeAddress,
				Key:      key,
				Receiver: receiver,
				Amount:   amount,
				Asset:    asset,
			})
			if err != nil {
				return err
			}
			if err := e.cache.Put(safeAddress, t.Hash, t.Transaction); err != nil {
				return err
			}
			logger.Debug("Transfer prepared", "hash", hexutil.Encode(t.Hash[:]))
			return e.printJSON(t.Request)
		},
	}
}
