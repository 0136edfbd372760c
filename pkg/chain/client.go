// Package chain reads Safe state over JSON-RPC.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/luxfi/safekit/pkg/logger"
)

var ErrClosed = errors.New("chain: client closed")

// Backend is the subset of ethclient.Client the client uses.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

type Options struct {
	Retries    uint
	RetryDelay time.Duration
	Timeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.Retries == 0 {
		o.Retries = 1
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 500 * time.Millisecond
	}
	return o
}

// Client implements safe.Caller on top of a Backend. Each read is retried
// up to Options.Retries times.
type Client struct {
	backend Backend
	opts    Options
	closed  atomic.Bool
}

func New(backend Backend, opts Options) *Client {
	return &Client{backend: backend, opts: opts.withDefaults()}
}

// Dial connects to rawURL.
func Dial(ctx context.Context, rawURL string, opts Options) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rawURL, err)
	}
	return New(ec, opts), nil
}

func (c *Client) do(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return retry.Do(
		func() error {
			callCtx := ctx
			if c.opts.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
				defer cancel()
			}
			return fn(callCtx)
		},
		retry.Attempts(c.opts.Retries),
		retry.Delay(c.opts.RetryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("Chain call failed, retrying", "method", method, "attempt", n+1, "error", err.Error())
		}),
	)
}

// CallContract performs eth_call against the latest block.
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "eth_call", func(ctx context.Context) error {
		var err error
		out, err = c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
		return err
	})
	return out, err
}

// ChainID returns the chain id reported by the node.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var id *big.Int
	err := c.do(ctx, "eth_chainId", func(ctx context.Context) error {
		var err error
		id, err = c.backend.ChainID(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	if !id.IsUint64() {
		return 0, fmt.Errorf("chain id %s out of range", id)
	}
	return id.Uint64(), nil
}

// CheckChainID fails when the node is on a different chain than want.
func (c *Client) CheckChainID(ctx context.Context, want uint64) error {
	got, err := c.ChainID(ctx)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("node reports chain id %d, configured %d", got, want)
	}
	return nil
}

func (c *Client) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.backend.Close()
	}
}
