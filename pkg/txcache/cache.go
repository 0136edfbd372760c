// Package txcache keeps recently built Safe transactions so a hash can be
// traced back to the transaction that produced it.
package txcache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fxamacker/cbor/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"

	"github.com/luxfi/safekit/pkg/safe"
)

var ErrNotFound = errors.New("txcache: transaction not found")

// Entry is a cached transaction together with the Safe it targets and its
// Safe transaction hash.
type Entry struct {
	Safe        common.Address
	Hash        [32]byte
	Transaction safe.SafeTransaction
}

// entryMarshal is the CBOR form of Entry.
type entryMarshal struct {
	Safe           []byte
	Hash           []byte
	To             []byte
	Value          []byte
	Data           []byte
	Operation      uint8
	SafeTxGas      []byte
	BaseGas        []byte
	GasPrice       []byte
	GasToken       []byte
	RefundReceiver []byte
	Nonce          []byte
}

func word(v uint256.Int) []byte {
	b := v.Bytes32()
	return b[:]
}

func marshalEntry(e Entry) ([]byte, error) {
	tx := e.Transaction
	return cbor.Marshal(&entryMarshal{
		Safe:           e.Safe.Bytes(),
		Hash:           e.Hash[:],
		To:             tx.To.Bytes(),
		Value:          word(tx.Value),
		Data:           tx.Data,
		Operation:      uint8(tx.Operation),
		SafeTxGas:      word(tx.SafeTxGas),
		BaseGas:        word(tx.BaseGas),
		GasPrice:       word(tx.GasPrice),
		GasToken:       tx.GasToken.Bytes(),
		RefundReceiver: tx.RefundReceiver.Bytes(),
		Nonce:          word(tx.Nonce),
	})
}

func unmarshalEntry(data []byte) (Entry, error) {
	var m entryMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return Entry{}, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	e := Entry{Safe: common.BytesToAddress(m.Safe)}
	copy(e.Hash[:], m.Hash)
	tx := &e.Transaction
	tx.To = common.BytesToAddress(m.To)
	tx.Value.SetBytes(m.Value)
	tx.Data = append([]byte{}, m.Data...)
	tx.Operation = safe.Operation(m.Operation)
	tx.SafeTxGas.SetBytes(m.SafeTxGas)
	tx.BaseGas.SetBytes(m.BaseGas)
	tx.GasPrice.SetBytes(m.GasPrice)
	tx.GasToken = common.BytesToAddress(m.GasToken)
	tx.RefundReceiver = common.BytesToAddress(m.RefundReceiver)
	tx.Nonce.SetBytes(m.Nonce)
	return e, nil
}

// Cache is a bounded LRU of transaction snapshots. Entries are stored
// encoded, so callers never share memory with the cache.
type Cache struct {
	entries *lru.Cache

	mu   sync.Mutex
	last map[common.Address][32]byte
}

func New(size int) (*Cache, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("txcache: %w", err)
	}
	return &Cache{entries: entries, last: make(map[common.Address][32]byte)}, nil
}

func nonceKey(s common.Address, nonce *uint256.Int) string {
	return "nonce:" + s.Hex() + ":" + nonce.Dec()
}

func hashKey(h [32]byte) string {
	return "hash:" + common.Hash(h).Hex()
}

// Put stores tx under both its hash and its (safe, nonce) pair, and marks it
// as the last transaction built for s.
func (c *Cache) Put(s common.Address, hash [32]byte, tx safe.SafeTransaction) error {
	data, err := marshalEntry(Entry{Safe: s, Hash: hash, Transaction: tx})
	if err != nil {
		return fmt.Errorf("txcache: %w", err)
	}
	c.entries.Add(hashKey(hash), data)
	c.entries.Add(nonceKey(s, &tx.Nonce), data)

	c.mu.Lock()
	c.last[s] = hash
	c.mu.Unlock()
	return nil
}

func (c *Cache) get(key string) (Entry, error) {
	v, ok := c.entries.Get(key)
	if !ok {
		return Entry{}, ErrNotFound
	}
	return unmarshalEntry(v.([]byte))
}

// ByHash returns the transaction whose Safe hash is h.
func (c *Cache) ByHash(h [32]byte) (Entry, error) {
	return c.get(hashKey(h))
}

// ByNonce returns the transaction built for s at nonce.
func (c *Cache) ByNonce(s common.Address, nonce *uint256.Int) (Entry, error) {
	return c.get(nonceKey(s, nonce))
}

// Last returns the most recent transaction stored for s.
func (c *Cache) Last(s common.Address) (Entry, error) {
	c.mu.Lock()
	h, ok := c.last[s]
	c.mu.Unlock()
	if !ok {
		return Entry{}, ErrNotFound
	}
	return c.ByHash(h)
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) Purge() {
	c.entries.Purge()
	c.mu.Lock()
	c.last = make(map[common.Address][32]byte)
	c.mu.Unlock()
}
