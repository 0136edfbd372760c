package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

var (
	ErrInvalidKeyLength = errors.New("invalid AES key length")
	ErrInvalidIV        = errors.New("invalid AES-CBC IV")
	ErrInvalidPadding   = errors.New("invalid PKCS7 padding")
)

func checkKey(key []byte) error {
	// Validate key length for AES
	switch len(key) {
	case 16, 24, 32:
		// Valid AES key sizes
		return nil
	default:
		return fmt.Errorf("%w: %d (must be 16, 24, or 32 bytes)", ErrInvalidKeyLength, len(key))
	}
}

// PKCS7Pad pads data to a multiple of blockSize. A full block is added when
// data is already aligned.
func PKCS7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

// PKCS7Unpad strips and checks PKCS7 padding.
func PKCS7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidPadding, len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}

// EncryptAESCBC pads plain with PKCS7 and encrypts it with AES-CBC.
// Key must be 16, 24, or 32 bytes for AES-128, AES-192, or AES-256.
func EncryptAESCBC(plain, key, iv []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidIV, len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := PKCS7Pad(plain, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// DecryptAESCBC decrypts AES-CBC ciphertext and strips the PKCS7 padding.
func DecryptAESCBC(ciphertext, key, iv []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidIV, len(iv))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d", ErrInvalidPadding, len(ciphertext))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)
	return PKCS7Unpad(plain, aes.BlockSize)
}
