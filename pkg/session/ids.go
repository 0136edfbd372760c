package session

import (
	cryptorand "crypto/rand"
	"encoding/hex"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// NewPeerID returns a random peer identifier.
func NewPeerID() string {
	return uuid.NewString()
}

// NewKey returns a random 32-byte session key as hex.
func NewKey() (string, error) {
	key := make([]byte, 32)
	if _, err := cryptorand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// NewCallID returns a call id from the current time in microseconds with
// random low digits, unique enough within a session.
func NewCallID() int64 {
	return time.Now().UnixMilli()*1000 + int64(rand.IntN(1000))
}
