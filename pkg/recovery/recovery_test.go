package recovery

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/safekit/pkg/abi"
	"github.com/luxfi/safekit/pkg/safe"
)

func addr(b byte) common.Address {
	return common.BytesToAddress([]byte{0xa0, b})
}

var (
	A, B, C, D = addr(1), addr(2), addr(3), addr(4)
	E, F       = addr(5), addr(6)

	safeAddr      = common.HexToAddress("0xd9Db270c1B5E3Bd161E8c8503c55cEABeE709552")
	multiSendAddr = common.HexToAddress("0xA238CBeb142c10Ef7Ad8442C6D1f9E89e07e7761")
)

var swapTypes = []abi.Type{abi.Address, abi.Address, abi.Address}

func decodeSwap(t *testing.T, data []byte) SwapOwnerOp {
	t.Helper()
	sel := abi.Selector(safe.SigSwapOwner)
	require.Equal(t, sel[:], data[:4])
	args, err := abi.DecodeArgs(swapTypes, data[4:])
	require.NoError(t, err)
	return SwapOwnerOp{
		PrevOwner: args[0].(common.Address),
		OldOwner:  args[1].(common.Address),
		NewOwner:  args[2].(common.Address),
	}
}

// decodeMultiSend splits multiSend(bytes) calldata into its sub-calls.
func decodeMultiSend(t *testing.T, data []byte) [][]any {
	t.Helper()
	sel := abi.Selector(safe.SigMultiSend)
	require.Equal(t, sel[:], data[:4])
	outer, err := abi.DecodeArgs([]abi.Type{abi.Bytes}, data[4:])
	require.NoError(t, err)
	batch := outer[0].([]byte)

	entryTypes := []abi.Type{abi.Uint8, abi.Address, abi.Uint256, abi.Bytes}
	var entries [][]any
	for len(batch) > 0 {
		entry, err := abi.DecodeArgs(entryTypes, batch)
		require.NoError(t, err)
		dataLen := len(entry[3].([]byte))
		size := 5*32 + (dataLen+31)/32*32
		entries = append(entries, entry)
		batch = batch[size:]
	}
	return entries
}

func TestPlanSwapsTailFirst(t *testing.T) {
	owners := []common.Address{A, B, C, D}
	ops, err := PlanSwaps(owners, []common.Address{A, B}, []common.Address{E, F})
	require.NoError(t, err)
	require.Len(t, ops, 2)

	assert.Equal(t, SwapOwnerOp{PrevOwner: C, OldOwner: D, NewOwner: F}, ops[0])
	assert.Equal(t, SwapOwnerOp{PrevOwner: B, OldOwner: C, NewOwner: E}, ops[1])
}

func TestPlanSwapsHeadUsesSentinel(t *testing.T) {
	ops, err := PlanSwaps([]common.Address{A, B}, []common.Address{B}, []common.Address{E})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, Sentinel, ops[0].PrevOwner)
	assert.Equal(t, A, ops[0].OldOwner)
}

func TestPlanSwapsDoesNotMutateInputs(t *testing.T) {
	owners := []common.Address{A, B, C, D}
	keep := []common.Address{A, B}
	swapIn := []common.Address{E, F}

	_, err := PlanSwaps(owners, keep, swapIn)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{A, B, C, D}, owners)
	assert.Equal(t, []common.Address{A, B}, keep)
	assert.Equal(t, []common.Address{E, F}, swapIn)
}

func TestPlanSwapsSkipsExistingOwners(t *testing.T) {
	// B is both an owner and a swap-in candidate: it is neither replaced nor
	// used as a replacement.
	ops, err := PlanSwaps([]common.Address{A, B, C, D}, []common.Address{A}, []common.Address{E, B})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, SwapOwnerOp{PrevOwner: C, OldOwner: D, NewOwner: E}, ops[0])
}

func TestPlanSwapsIncomplete(t *testing.T) {
	_, err := PlanSwaps([]common.Address{A, B, C}, []common.Address{A, B}, []common.Address{D, E})
	assert.ErrorIs(t, err, ErrIncompleteRecovery)

	_, err = PlanSwaps([]common.Address{A, B}, []common.Address{A, B}, []common.Address{E})
	assert.ErrorIs(t, err, ErrIncompleteRecovery)
}

func TestPlanSwapsDuplicateOwner(t *testing.T) {
	_, err := PlanSwaps([]common.Address{A, B, A}, nil, []common.Address{E})
	assert.ErrorIs(t, err, ErrDuplicateOwner)
}

func TestPackageSingleSwap(t *testing.T) {
	planner := NewPlanner(multiSendAddr)
	info := safe.Info{Address: safeAddr, Owners: []common.Address{A, B, C}}
	info.Nonce.SetUint64(12)

	tx, ops, err := planner.BuildRecoverTransaction(info, []common.Address{A, B}, []common.Address{D})
	require.NoError(t, err)
	require.Len(t, ops, 1)

	assert.Equal(t, safe.Call, tx.Operation)
	assert.Equal(t, safeAddr, tx.To)
	assert.True(t, tx.Value.IsZero())
	assert.Equal(t, uint64(12), tx.Nonce.Uint64())
	assert.Equal(t, SwapOwnerOp{PrevOwner: B, OldOwner: C, NewOwner: D}, decodeSwap(t, tx.Data))
}

func TestPackageMultiSend(t *testing.T) {
	planner := NewPlanner(multiSendAddr)
	info := safe.Info{Address: safeAddr, Owners: []common.Address{A, B, C, D}}

	tx, ops, err := planner.BuildRecoverTransaction(info, []common.Address{A, B}, []common.Address{E, F})
	require.NoError(t, err)
	require.Len(t, ops, 2)

	assert.Equal(t, safe.DelegateCall, tx.Operation)
	assert.Equal(t, multiSendAddr, tx.To)

	entries := decodeMultiSend(t, tx.Data)
	require.Len(t, entries, 2)
	for i, entry := range entries {
		assert.Equal(t, uint256.NewInt(0), entry[0], "operation")
		assert.Equal(t, safeAddr, entry[1])
		assert.Equal(t, uint256.NewInt(0), entry[2], "value")
		assert.Equal(t, ops[i], decodeSwap(t, entry[3].([]byte)))
	}
	assert.Equal(t, D, ops[0].OldOwner)
	assert.Equal(t, C, ops[1].OldOwner)
}

func TestPackageNothingToDo(t *testing.T) {
	_, err := Package(safeAddr, multiSendAddr, nil, uint256.NewInt(0))
	var nre *NoRecoveryNecessaryError
	require.ErrorAs(t, err, &nre)
	assert.Equal(t, safeAddr, nre.Safe)
}

func TestEncodeMultiSendEntryLayout(t *testing.T) {
	swap := SwapOwnerOp{PrevOwner: A, OldOwner: B, NewOwner: C}.Calldata()
	entry, err := EncodeMultiSendEntry(safe.Call, safeAddr, uint256.NewInt(0), swap)
	require.NoError(t, err)
	// 4 head words, length word, 100 bytes of calldata padded to 128
	assert.Len(t, entry, 4*32+32+128)
	assert.Equal(t, byte(0x80), entry[3*32+31])
	assert.Equal(t, byte(100), entry[4*32+31])
}

const testMnemonic = "test test test test test test test test test test test junk"

var (
	phrase0 = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	phrase1 = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	appAddr = addr(0x10)
	extAddr = addr(0x20)
)

func TestDeriveAccount(t *testing.T) {
	seed, err := MnemonicSeed(testMnemonic)
	require.NoError(t, err)
	for i, want := range []common.Address{phrase0, phrase1} {
		key, err := DeriveAccount(seed, uint32(i))
		require.NoError(t, err)
		assert.Equal(t, want, safe.AddressFromKey(key))
	}
}

func TestRecoverWithMnemonic(t *testing.T) {
	planner := NewPlanner(multiSendAddr)

	t.Run("extension present swaps only the app", func(t *testing.T) {
		q := addr(0x30)
		info := safe.Info{Address: safeAddr, Owners: []common.Address{phrase0, phrase1, extAddr, q}}
		rec, err := planner.RecoverWithMnemonic(info, testMnemonic, appAddr, extAddr)
		require.NoError(t, err)

		require.Len(t, rec.Ops, 1)
		assert.Equal(t, SwapOwnerOp{PrevOwner: extAddr, OldOwner: q, NewOwner: appAddr}, rec.Ops[0])
		assert.Equal(t, safe.Call, rec.Transaction.Operation)
		assert.Equal(t, safeAddr, rec.Transaction.To)
		assert.Equal(t, [2]common.Address{phrase0, phrase1}, rec.Signers)
	})

	t.Run("both targets present", func(t *testing.T) {
		info := safe.Info{Address: safeAddr, Owners: []common.Address{phrase0, phrase1, appAddr, extAddr}}
		_, err := planner.RecoverWithMnemonic(info, testMnemonic, appAddr, extAddr)
		var nre *NoRecoveryNecessaryError
		assert.ErrorAs(t, err, &nre)
	})

	t.Run("neither target present", func(t *testing.T) {
		p, q := addr(0x31), addr(0x32)
		info := safe.Info{Address: safeAddr, Owners: []common.Address{p, phrase0, q, phrase1}}
		rec, err := planner.RecoverWithMnemonic(info, "  "+testMnemonic+"\n", appAddr, extAddr)
		require.NoError(t, err)

		require.Len(t, rec.Ops, 2)
		assert.Equal(t, SwapOwnerOp{PrevOwner: phrase0, OldOwner: q, NewOwner: extAddr}, rec.Ops[0])
		assert.Equal(t, SwapOwnerOp{PrevOwner: Sentinel, OldOwner: p, NewOwner: appAddr}, rec.Ops[1])
		assert.Equal(t, safe.DelegateCall, rec.Transaction.Operation)
		assert.Equal(t, multiSendAddr, rec.Transaction.To)
	})
}

func TestRecoverWithMnemonicErrors(t *testing.T) {
	planner := NewPlanner(multiSendAddr)
	tests := []struct {
		name   string
		owners []common.Address
		phrase string
		want   error
	}{
		{"bad checksum", []common.Address{phrase0, phrase1, A, B}, "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", ErrInvalidMnemonic},
		{"unknown word", []common.Address{phrase0, phrase1, A, B}, "safe safe safe", ErrInvalidMnemonic},
		{"three owners", []common.Address{phrase0, phrase1, A}, testMnemonic, ErrWrongConfiguration},
		{"phrase account not owner", []common.Address{phrase0, A, B, C}, testMnemonic, ErrWrongConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := planner.RecoverWithMnemonic(safe.Info{Address: safeAddr, Owners: tt.owners}, tt.phrase, appAddr, extAddr)
			require.ErrorIs(t, err, tt.want)
			for _, other := range []error{ErrInvalidMnemonic, ErrWrongConfiguration, ErrIncompleteRecovery} {
				if other != tt.want {
					assert.False(t, errors.Is(err, other))
				}
			}
		})
	}
}

func TestSignRecovery(t *testing.T) {
	planner := NewPlanner(multiSendAddr)
	info := safe.Info{Address: safeAddr, Owners: []common.Address{phrase0, phrase1, extAddr, A}}
	rec, err := planner.RecoverWithMnemonic(info, testMnemonic, appAddr, extAddr)
	require.NoError(t, err)

	hash := safe.HashLocal(safeAddr, 1, rec.Transaction)
	sigs, err := SignRecovery(hash, rec)
	require.NoError(t, err)
	require.Len(t, sigs, 2)

	first, err := safe.RecoverSigner(hash, sigs[0])
	require.NoError(t, err)
	second, err := safe.RecoverSigner(hash, sigs[1])
	require.NoError(t, err)
	// 0x7099... sorts before 0xf39F...
	assert.Equal(t, phrase1, first)
	assert.Equal(t, phrase0, second)
}
