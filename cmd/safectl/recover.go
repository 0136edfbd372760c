package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/luxfi/safekit/pkg/common/pathutil"
	"github.com/luxfi/safekit/pkg/logger"
	"github.com/luxfi/safekit/pkg/recovery"
	"github.com/luxfi/safekit/pkg/safe"
)

type recoveryView struct {
	Transaction txView   `json:"transaction"`
	Swaps       []string `json:"swaps"`
	Signatures  []string `json:"signatures,omitempty"`
	ExecData    string   `json:"execData,omitempty"`
}

func swapStrings(ops []recovery.SwapOwnerOp) []string {
	return lo.Map(ops, func(op recovery.SwapOwnerOp, _ int) string {
		return fmt.Sprintf("%s -> %s (prev %s)", op.OldOwner.Hex(), op.NewOwner.Hex(), op.PrevOwner.Hex())
	})
}

// reportNothingToDo turns NoRecoveryNecessaryError into a message instead of
// a failure.
func reportNothingToDo(e *env, err error) error {
	var none *recovery.NoRecoveryNecessaryError
	if errors.As(err, &none) {
		_, werr := fmt.Fprintln(e.out, none.Error())
		return werr
	}
	return err
}

func recoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "recover",
		Usage: "Swap new owners into the Safe while keeping the given ones",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "keep", Usage: "Owner to keep (repeatable or comma separated)"},
			&cli.StringSliceFlag{Name: "swap-in", Usage: "Owner to install (repeatable or comma separated)", Required: true},
			&cli.BoolFlag{Name: "sign", Usage: "Sign the recovery hash with the configured key"},
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
			keep, err := parseAddresses(c.StringSlice("keep"))
			if err != nil {
				return err
			}
			swapIn, err := parseAddresses(c.StringSlice("swap-in"))
			if err != nil {
				return err
			}
			info, err := safe.LoadInfo(ctx, e.client, safeAddress)
			if err != nil {
				return err
			}

			tx, ops, err := recovery.NewPlanner(e.cfg.MultiSendAddress).BuildRecoverTransaction(info, keep, swapIn)
			if err != nil {
				return reportNothingToDo(e, err)
			}
			hash, err := e.onChainHash(ctx, safeAddress, tx)
			if err != nil {
				return err
			}

			view := recoveryView{Transaction: newTxView(safeAddress, tx, &hash), Swaps: swapStrings(ops)}
			if c.Bool("sign") {
				key, err := e.loadKey()
				if err != nil {
					return err
				}
				if _, err := safe.VerifyOwner(key, info.Owners); err != nil {
					return err
				}
				sig, err := safe.Sign(key, hash)
				if err != nil {
					return err
				}
				view.Signatures = []string{sig.Hex()}
			}
			return e.printJSON(view)
		},
	}
}

func readMnemonic(c *cli.Command) (string, error) {
	if path := c.String("mnemonic-file"); path != "" {
		if err := pathutil.ValidateFilePath(path); err != nil {
			return "", err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read mnemonic file: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return readSecret("Recovery phrase: ")
}

func recoverMnemonicCommand() *cli.Command {
	return &cli.Command{
		Name:  "recover-mnemonic",
		Usage: "Recover a 4-owner Safe with its recovery phrase and produce execTransaction calldata",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "app", Usage: "New app owner address", Required: true},
			&cli.StringFlag{Name: "extension", Usage: "New extension owner address (defaults to extension_address)"},
			&cli.StringFlag{Name: "mnemonic-file", Usage: "Read the phrase from a file instead of the terminal"},
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
			app, err := parseAddress(c.String("app"))
			if err != nil {
				return err
			}
			extension := e.cfg.ExtensionAddress
			if c.IsSet("extension") {
				if extension, err = parseAddress(c.String("extension")); err != nil {
					return err
				}
			}
			if extension == (common.Address{}) {
				return fmt.Errorf("extension address is required")
			}
			phrase, err := readMnemonic(c)
			if err != nil {
				return err
			}
			info, err := safe.LoadInfo(ctx, e.client, safeAddress)
			if err != nil {
				return err
			}

			rec, err := recovery.NewPlanner(e.cfg.MultiSendAddress).RecoverWithMnemonic(info, phrase, app, extension)
			if err != nil {
				return reportNothingToDo(e, err)
			}
			hash, err := e.onChainHash(ctx, safeAddress, rec.Transaction)
			if err != nil {
				return err
			}
			sigs, err := recovery.SignRecovery(hash, rec)
			if err != nil {
				return err
			}
			exec, err := safe.EncodeExecTransaction(rec.Transaction, safe.PackSignatures(sigs...))
			if err != nil {
				return err
			}
			logger.Info("Recovery signed", "safe", safeAddress.Hex(), "swaps", len(rec.Ops))

			return e.printJSON(recoveryView{
				Transaction: newTxView(safeAddress, rec.Transaction, &hash),
				Swaps:       swapStrings(rec.Ops),
				Signatures:  lo.Map(sigs, func(s safe.Signature, _ int) string { return s.Hex() }),
				ExecData:    hexutil.Encode(exec),
			})
		},
	}
}
