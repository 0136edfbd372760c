package recovery

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"

	"github.com/luxfi/safekit/pkg/logger"
	"github.com/luxfi/safekit/pkg/safe"
)

// mnemonicOwners is the owner layout of a mnemonic-recoverable Safe: the app
// key, the browser extension key and two recovery phrase accounts.
const mnemonicOwners = 4

// MnemonicRecovery is a recovery transaction plus the two phrase-derived keys
// that must sign it.
type MnemonicRecovery struct {
	Transaction safe.SafeTransaction
	Ops         []SwapOwnerOp
	Signers     [2]common.Address
	Keys        [2]*secp256k1.PrivateKey
}

// DeriveAccount derives the key at m/44'/60'/0'/0/index from seed.
func DeriveAccount(seed []byte, index uint32) (*secp256k1.PrivateKey, error) {
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	for _, child := range []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + 60,
		bip32.FirstHardenedChild,
		0,
		index,
	} {
		if key, err = key.NewChildKey(child); err != nil {
			return nil, fmt.Errorf("derive child %d: %w", child, err)
		}
	}
	return safe.PrivateKeyFromBytes(common.LeftPadBytes(key.Key, 32))
}

// MnemonicSeed validates phrase and returns its BIP-39 seed.
func MnemonicSeed(phrase string) ([]byte, error) {
	phrase = strings.Join(strings.Fields(phrase), " ")
	seed, err := bip39.NewSeedWithErrorChecking(phrase, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	return seed, nil
}

// RecoverWithMnemonic builds the transaction that reinstalls appAddress and
// extensionAddress on a 2-of-4 Safe whose other two owners come from phrase.
func (p *Planner) RecoverWithMnemonic(info safe.Info, phrase string, appAddress, extensionAddress common.Address) (*MnemonicRecovery, error) {
	seed, err := MnemonicSeed(phrase)
	if err != nil {
		return nil, err
	}
	rec := &MnemonicRecovery{}
	for i := range rec.Keys {
		key, err := DeriveAccount(seed, uint32(i))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
		}
		rec.Keys[i] = key
		rec.Signers[i] = safe.AddressFromKey(key)
	}

	if len(info.Owners) != mnemonicOwners {
		return nil, fmt.Errorf("%w: expected %d owners, safe has %d", ErrWrongConfiguration, mnemonicOwners, len(info.Owners))
	}
	for _, signer := range rec.Signers {
		if !lo.Contains(info.Owners, signer) {
			return nil, fmt.Errorf("%w: %s is not an owner", ErrWrongConfiguration, signer.Hex())
		}
	}

	keep := append([]common.Address{}, rec.Signers[:]...)
	var newAddresses []common.Address
	for _, target := range []common.Address{extensionAddress, appAddress} {
		if lo.Contains(info.Owners, target) {
			keep = append(keep, target)
			continue
		}
		newAddresses = append(newAddresses, target)
	}
	if len(newAddresses) == 0 {
		return nil, &NoRecoveryNecessaryError{Safe: info.Address}
	}

	// PlanSwaps pops from the tail, so reverse to pair the extension with the
	// last replaceable owner.
	swapIn := make([]common.Address, len(newAddresses))
	for i, a := range newAddresses {
		swapIn[len(newAddresses)-1-i] = a
	}
	logger.Debug("Mnemonic recovery", "safe", info.Address.Hex(), "swaps", len(swapIn))
	tx, ops, err := p.BuildRecoverTransaction(info, keep, swapIn)
	if err != nil {
		return nil, err
	}
	rec.Transaction = tx
	rec.Ops = ops
	return rec, nil
}

// SignRecovery signs hash with both recovery keys and returns the signatures
// ordered by signer address, the order execTransaction checks.
func SignRecovery(hash [32]byte, rec *MnemonicRecovery) ([]safe.Signature, error) {
	type signed struct {
		signer common.Address
		sig    safe.Signature
	}
	out := make([]signed, 0, len(rec.Keys))
	for i, key := range rec.Keys {
		sig, err := safe.Sign(key, hash)
		if err != nil {
			return nil, err
		}
		out = append(out, signed{signer: rec.Signers[i], sig: sig})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].signer.Bytes(), out[j].signer.Bytes()) < 0
	})
	return lo.Map(out, func(s signed, _ int) safe.Signature { return s.sig }), nil
}
