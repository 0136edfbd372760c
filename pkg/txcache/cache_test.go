package txcache

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/safekit/pkg/safe"
)

var (
	safeAddr = common.HexToAddress("0x5afE000000000000000000000000000000000001")
	receiver = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	token    = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func TestPutAndLookup(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	tx := safe.BuildErc20Transfer(receiver, token, uint256.NewInt(1000), uint256.NewInt(7))
	hash := safe.HashLocal(safeAddr, 1, tx)
	require.NoError(t, c.Put(safeAddr, hash, tx))

	byHash, err := c.ByHash(hash)
	require.NoError(t, err)
	assert.True(t, tx.Equal(byHash.Transaction))
	assert.Equal(t, safeAddr, byHash.Safe)
	assert.Equal(t, hash, byHash.Hash)

	byNonce, err := c.ByNonce(safeAddr, uint256.NewInt(7))
	require.NoError(t, err)
	assert.True(t, tx.Equal(byNonce.Transaction))

	last, err := c.Last(safeAddr)
	require.NoError(t, err)
	assert.Equal(t, hash, last.Hash)

	_, err = c.ByNonce(safeAddr, uint256.NewInt(8))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Last(receiver)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReturnsIndependentCopies(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	tx := safe.BuildCall(receiver, uint256.NewInt(0), []byte{1, 2, 3}, safe.Call, uint256.NewInt(1))
	hash := safe.HashLocal(safeAddr, 1, tx)
	require.NoError(t, c.Put(safeAddr, hash, tx))

	tx.Data[0] = 0xff
	first, err := c.ByHash(hash)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, first.Transaction.Data)

	first.Transaction.Data[1] = 0xff
	first.Transaction.Nonce.SetUint64(99)
	second, err := c.ByHash(hash)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, second.Transaction.Data)
	assert.Equal(t, uint64(1), second.Transaction.Nonce.Uint64())
}

func TestEviction(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	first := safe.BuildEthTransfer(receiver, uint256.NewInt(1), uint256.NewInt(1))
	firstHash := safe.HashLocal(safeAddr, 1, first)
	require.NoError(t, c.Put(safeAddr, firstHash, first))

	second := safe.BuildEthTransfer(receiver, uint256.NewInt(2), uint256.NewInt(2))
	secondHash := safe.HashLocal(safeAddr, 1, second)
	require.NoError(t, c.Put(safeAddr, secondHash, second))

	assert.Equal(t, 2, c.Len())
	_, err = c.ByHash(firstHash)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.ByHash(secondHash)
	assert.NoError(t, err)

	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, err = c.Last(safeAddr)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidSize(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
}
