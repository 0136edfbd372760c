package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/luxfi/safekit/pkg/logger"
	"github.com/luxfi/safekit/pkg/safe"
)

func addOwnerCommand() *cli.Command {
	return &cli.Command{
		Name:  "add-owner",
		Usage: "Add an owner to the Safe and raise the threshold to match",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "owner", Usage: "Address of the new owner", Required: true},
			&cli.BoolFlag{Name: "sign", Usage: "Sign with the configured key and print a transaction-service proposal"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			newOwner, err := safe.ParseOwner(c.String("owner"))
			if err != nil {
				return err
			}
			e, err := newEnv(ctx, c, true)
			if err != nil {
				return err
			}
			defer e.Close()

			safeAddress, err := e.safeAddress()
			if err != nil {
				return err
			}
			info, err := safe.LoadInfo(ctx, e.client, safeAddress)
			if err != nil {
				return err
			}
			tx, err := safe.BuildAddOwner(info, newOwner)
			if err != nil {
				return err
			}
			hash, err := e.onChainHash(ctx, safeAddress, tx)
			if err != nil {
				return err
			}
			if !c.Bool("sign") {
				return e.printJSON(newTxView(safeAddress, tx, &hash))
			}

			key, err := e.loadKey()
			if err != nil {
				return err
			}
			signer, err := safe.VerifyOwner(key, info.Owners)
			if err != nil {
				return err
			}
			sig, err := safe.Sign(key, hash)
			if err != nil {
				return err
			}
			logger.Info("Add owner signed", "safe", safeAddress.Hex(), "owner", newOwner.Hex(), "nonce", tx.Nonce.Dec())
			return e.printJSON(tx.ToCoreRequest(signer, hash, sig))
		},
	}
}
