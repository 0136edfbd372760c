package recovery

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrIncompleteRecovery = errors.New("recovery: could not assign all addresses")
	ErrInvalidMnemonic    = errors.New("recovery: invalid mnemonic")
	ErrWrongConfiguration = errors.New("recovery: safe configuration does not match")
	ErrDuplicateOwner     = errors.New("recovery: duplicate owner")
)

// NoRecoveryNecessaryError means the Safe already has the requested owners.
type NoRecoveryNecessaryError struct {
	Safe common.Address
}

func (e *NoRecoveryNecessaryError) Error() string {
	return fmt.Sprintf("recovery: safe %s is already in expected state", e.Safe.Hex())
}
