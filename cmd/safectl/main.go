package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

const Version = "0.1.0"

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "safectl",
		Usage:   "Build, hash, sign and recover Safe multisig transactions",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Config file (default ./safekit.yaml)"},
			&cli.StringFlag{Name: "network", Aliases: []string{"n"}, Usage: "Network code"},
			&cli.StringFlag{Name: "rpc", Usage: "JSON-RPC endpoint"},
			&cli.StringFlag{Name: "safe", Aliases: []string{"s"}, Usage: "Safe address"},
			&cli.StringFlag{Name: "chain-id", Usage: "Chain id override"},
			&cli.StringFlag{Name: "multisend", Usage: "MultiSend contract override"},
			&cli.StringFlag{Name: "key-file", Aliases: []string{"k"}, Usage: "Owner key file (plain hex or age-encrypted)"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		},
		Commands: []*cli.Command{
			hashCommand(),
			signCommand(),
			transferCommand(),
			recoverCommand(),
			recoverMnemonicCommand(),
			addOwnerCommand(),
			sessionCommand(),
			{
				Name:  "version",
				Usage: "Display version information",
				Action: func(ctx context.Context, c *cli.Command) error {
					_, err := fmt.Fprintf(c.Root().Writer, "safectl version %s\n", Version)
					return err
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
