package session

import (
	"crypto/aes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/luxfi/safekit/pkg/encryption"
	"github.com/luxfi/safekit/pkg/utils"
)

// EncryptedPayload is the wire envelope. All fields are unprefixed hex.
type EncryptedPayload struct {
	Data string `json:"data"`
	HMAC string `json:"hmac"`
	IV   string `json:"iv"`
}

// Codec encrypts and decrypts method calls with a shared hex key.
type Codec struct {
	rand io.Reader
}

// NewCodec returns a Codec drawing IVs from r, or from crypto/rand when r is nil.
func NewCodec(r io.Reader) *Codec {
	if r == nil {
		r = rand.Reader
	}
	return &Codec{rand: r}
}

var defaultCodec = NewCodec(nil)

func decodeKey(keyHex string) ([]byte, error) {
	key, err := hex.DecodeString(utils.Trim0x(keyHex))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	}
	return nil, fmt.Errorf("%w: %d bytes", ErrInvalidKey, len(key))
}

// Encrypt serializes call and seals it under keyHex with a fresh IV.
func (c *Codec) Encrypt(call MethodCall, keyHex string) (*EncryptedPayload, error) {
	key, err := decodeKey(keyHex)
	if err != nil {
		return nil, err
	}
	plain, err := Marshal(call)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return nil, fmt.Errorf("session: read iv: %w", err)
	}
	ct, err := encryption.EncryptAESCBC(plain, key, iv)
	if err != nil {
		return nil, err
	}
	return &EncryptedPayload{
		Data: hex.EncodeToString(ct),
		HMAC: hex.EncodeToString(encryption.ComputeHMAC(key, ct, iv)),
		IV:   hex.EncodeToString(iv),
	}, nil
}

// Decrypt authenticates p, decrypts it and parses the method call. The HMAC
// is checked before any decryption.
func (c *Codec) Decrypt(p *EncryptedPayload, keyHex string) (MethodCall, error) {
	key, err := decodeKey(keyHex)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: nil payload", ErrInvalidPayload)
	}
	ct, err := hex.DecodeString(utils.Trim0x(p.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrInvalidPayload, err)
	}
	iv, err := hex.DecodeString(utils.Trim0x(p.IV))
	if err != nil || len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes of hex", ErrInvalidPayload, aes.BlockSize)
	}
	mac, err := hex.DecodeString(utils.Trim0x(p.HMAC))
	if err != nil {
		return nil, fmt.Errorf("%w: hmac: %v", ErrInvalidPayload, err)
	}
	if !encryption.VerifyHMAC(key, mac, ct, iv) {
		return nil, ErrIntegrity
	}
	plain, err := encryption.DecryptAESCBC(ct, key, iv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return Unmarshal(plain)
}

// Prepare returns the JSON envelope for call.
func (c *Codec) Prepare(call MethodCall, keyHex string) (string, error) {
	p, err := c.Encrypt(call, keyHex)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Parse decodes a JSON envelope and decrypts it.
func (c *Codec) Parse(payload, keyHex string) (MethodCall, error) {
	var p EncryptedPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return c.Decrypt(&p, keyHex)
}

func Encrypt(call MethodCall, keyHex string) (*EncryptedPayload, error) {
	return defaultCodec.Encrypt(call, keyHex)
}

func Decrypt(p *EncryptedPayload, keyHex string) (MethodCall, error) {
	return defaultCodec.Decrypt(p, keyHex)
}

func Prepare(call MethodCall, keyHex string) (string, error) {
	return defaultCodec.Prepare(call, keyHex)
}

func Parse(payload, keyHex string) (MethodCall, error) {
	return defaultCodec.Parse(payload, keyHex)
}
