package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/luxfi/safekit/pkg/session"
)

// readInput returns the first argument, or stdin when there is none.
func readInput(c *cli.Command) ([]byte, error) {
	if arg := c.Args().First(); arg != "" {
		return []byte(arg), nil
	}
	r := c.Root().Reader
	if r == nil {
		r = os.Stdin
	}
	return io.ReadAll(r)
}

func keyFlag() cli.Flag {
	return &cli.StringFlag{Name: "key", Usage: "Hex session key (16, 24 or 32 bytes)", Required: true}
}

func sessionCommand() *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Encrypt and decrypt wallet session messages",
		Commands: []*cli.Command{
			{
				Name:      "encrypt",
				Usage:     "Encrypt a JSON-RPC call into a session payload",
				ArgsUsage: "[json]",
				Flags:     []cli.Flag{keyFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					e, err := newEnv(ctx, c, false)
					if err != nil {
						return err
					}
					in, err := readInput(c)
					if err != nil {
						return err
					}
					call, err := session.Unmarshal([]byte(strings.TrimSpace(string(in))))
					if err != nil {
						return err
					}
					payload, err := session.Prepare(call, c.String("key"))
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(e.out, payload)
					return err
				},
			},
			{
				Name:      "decrypt",
				Usage:     "Decrypt a session payload and print the JSON-RPC call",
				ArgsUsage: "[payload]",
				Flags:     []cli.Flag{keyFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					e, err := newEnv(ctx, c, false)
					if err != nil {
						return err
					}
					in, err := readInput(c)
					if err != nil {
						return err
					}
					call, err := session.Parse(strings.TrimSpace(string(in)), c.String("key"))
					if err != nil {
						return err
					}
					out, err := session.Marshal(call)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(e.out, string(out))
					return err
				},
			},
			{
				Name:  "keygen",
				Usage: "Generate a session key and peer id",
				Action: func(ctx context.Context, c *cli.Command) error {
					e, err := newEnv(ctx, c, false)
					if err != nil {
						return err
					}
					key, err := session.NewKey()
					if err != nil {
						return err
					}
					return e.printJSON(map[string]string{
						"key":    key,
						"peerId": session.NewPeerID(),
					})
				},
			},
		},
	}
}
