package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/luxfi/safekit/pkg/chain"
	"github.com/luxfi/safekit/pkg/config"
	"github.com/luxfi/safekit/pkg/credentials"
	"github.com/luxfi/safekit/pkg/encoding"
	"github.com/luxfi/safekit/pkg/logger"
	"github.com/luxfi/safekit/pkg/safe"
	"github.com/luxfi/safekit/pkg/txcache"
	"github.com/luxfi/safekit/pkg/utils"
)

// flagKeys maps global flags onto config keys.
var flagKeys = map[string]string{
	"network":   "network",
	"rpc":       "rpc.url",
	"safe":      "safe_address",
	"chain-id":  "chain_id",
	"key-file":  "key_file",
	"multisend": "multisend_address",
}

// env is what every command works with once configuration is loaded.
type env struct {
	cfg    *config.Config
	client *chain.Client
	cache  *txcache.Cache
	out    io.Writer
}

func loadConfig(c *cli.Command) (*config.Config, error) {
	if err := config.InitViperConfig(c.String("config")); err != nil {
		return nil, err
	}
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			viper.Set(key, c.String(flag))
		}
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Init(cfg.Environment, c.Bool("debug") || cfg.Debug())
	return cfg, nil
}

// newEnv loads configuration and, when online is set, connects to the node.
func newEnv(ctx context.Context, c *cli.Command, online bool) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	cache, err := txcache.New(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, cache: cache, out: c.Root().Writer}
	if e.out == nil {
		e.out = os.Stdout
	}
	if !online {
		return e, nil
	}

	e.client, err = chain.Dial(ctx, cfg.RPC.URL, chain.Options{
		Retries:    cfg.RPC.Retries,
		RetryDelay: cfg.RPC.RetryDelay,
		Timeout:    cfg.RPC.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if err := e.client.CheckChainID(ctx, cfg.ChainID); err != nil {
		logger.Warn("Chain id check failed", "error", err.Error(), "rpc", cfg.RPC.URL)
	}
	logger.Debug("Connected", "rpc", cfg.RPC.URL, "chainID", cfg.ChainID)
	return e, nil
}

func (e *env) Close() {
	if e.client != nil {
		e.client.Close()
	}
}

// safeAddress returns the configured Safe or fails.
func (e *env) safeAddress() (common.Address, error) {
	if err := e.cfg.RequireSafe(); err != nil {
		return common.Address{}, err
	}
	return e.cfg.SafeAddress, nil
}

func (e *env) loadKey() (*secp256k1.PrivateKey, error) {
	if e.cfg.KeyFile == "" {
		return nil, fmt.Errorf("%w: key_file is required", config.ErrInvalidConfig)
	}
	return credentials.LoadKey(e.cfg.KeyFile, func() (string, error) {
		return readSecret("Key file passphrase: ")
	})
}

func (e *env) printJSON(v any) error {
	data, err := encoding.StructToJsonBytes(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.out, string(data))
	return err
}

// readSecret prompts on stderr and reads a line from the terminal without
// echo.
func readSecret(prompt string) (string, error) {
	if !term.IsTerminal(syscall.Stdin) {
		return "", fmt.Errorf("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(syscall.Stdin)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseAddresses(list []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(list))
	for _, s := range list {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			a, err := parseAddress(part)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		}
	}
	return out, nil
}

// parseUint256 accepts decimal or 0x-prefixed hex.
func parseUint256(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(uint256.Int), nil
	}
	var (
		v   *uint256.Int
		err error
	)
	if utils.Has0xPrefix(s) {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return v, nil
}

func parseData(s string) ([]byte, error) {
	if s = strings.TrimSpace(s); s == "" || s == "0x" {
		return []byte{}, nil
	}
	b, err := hexutil.Decode(utils.Add0x(s))
	if err != nil {
		return nil, fmt.Errorf("invalid calldata: %w", err)
	}
	return b, nil
}

func parseHash(s string) ([32]byte, error) {
	var h [32]byte
	b, err := hexutil.Decode(utils.Add0x(strings.TrimSpace(s)))
	if err != nil || len(b) != 32 {
		return h, fmt.Errorf("invalid hash %q", s)
	}
	copy(h[:], b)
	return h, nil
}

// txView is the printable form of a Safe transaction.
type txView struct {
	Safe           string `json:"safe"`
	To             string `json:"to"`
	Value          string `json:"value"`
	Data           string `json:"data"`
	Operation      uint8  `json:"operation"`
	SafeTxGas      string `json:"safeTxGas"`
	BaseGas        string `json:"baseGas"`
	GasPrice       string `json:"gasPrice"`
	GasToken       string `json:"gasToken"`
	RefundReceiver string `json:"refundReceiver"`
	Nonce          string `json:"nonce"`
	Hash           string `json:"safeTxHash,omitempty"`
}

func newTxView(safeAddress common.Address, tx safe.SafeTransaction, hash *[32]byte) txView {
	v := txView{
		Safe:           safeAddress.Hex(),
		To:             tx.To.Hex(),
		Value:          tx.Value.Dec(),
		Data:           hexutil.Encode(tx.Data),
		Operation:      uint8(tx.Operation),
		SafeTxGas:      tx.SafeTxGas.Dec(),
		BaseGas:        tx.BaseGas.Dec(),
		GasPrice:       tx.GasPrice.Dec(),
		GasToken:       tx.GasToken.Hex(),
		RefundReceiver: tx.RefundReceiver.Hex(),
		Nonce:          tx.Nonce.Dec(),
	}
	if hash != nil {
		v.Hash = hexutil.Encode(hash[:])
	}
	return v
}

// onChainHash asks the Safe for the hash of tx and cross-checks it against
// the locally computed EIP-712 hash. A transaction already hashed at the same
// nonce is answered from the cache.
func (e *env) onChainHash(ctx context.Context, safeAddress common.Address, tx safe.SafeTransaction) ([32]byte, error) {
	if entry, err := e.cache.ByNonce(safeAddress, &tx.Nonce); err == nil && entry.Transaction.Equal(tx) {
		logger.Debug("Safe hash from cache", "nonce", tx.Nonce.Dec())
		return entry.Hash, nil
	}
	hash, err := safe.ComputeHash(ctx, e.client, safeAddress, tx)
	if err != nil {
		return hash, err
	}
	if local := safe.HashLocal(safeAddress, e.cfg.ChainID, tx); local != hash {
		logger.Warn("On-chain hash differs from local EIP-712 hash",
			"chain", hexutil.Encode(hash[:]), "local", hexutil.Encode(local[:]))
	}
	if err := e.cache.Put(safeAddress, hash, tx); err != nil {
		return hash, err
	}
	return hash, nil
}
