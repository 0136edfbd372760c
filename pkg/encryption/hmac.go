package encryption

import (
	"crypto/hmac"
	"crypto/sha256"
)

// ComputeHMAC returns HMAC-SHA256 over the concatenation of parts.
func ComputeHMAC(key []byte, parts ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	for _, p := range parts {
		mac.Write(p)
	}
	return mac.Sum(nil)
}

// VerifyHMAC compares expected against a fresh HMAC in constant time.
func VerifyHMAC(key, expected []byte, parts ...[]byte) bool {
	return hmac.Equal(expected, ComputeHMAC(key, parts...))
}
