// Package credentials loads Safe owner keys from disk. Key files hold a hex
// encoded secp256k1 scalar, either in plain text or age-encrypted with a
// passphrase (binary or ASCII armored).
package credentials

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"filippo.io/age/armor"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/luxfi/safekit/pkg/common/pathutil"
	"github.com/luxfi/safekit/pkg/safe"
)

const (
	ageHeader   = "age-encryption.org/v1"
	armorHeader = "-----BEGIN AGE ENCRYPTED FILE-----"

	// Upper bound on the scrypt work factor accepted when decrypting.
	maxWorkFactor = 22
)

var (
	ErrPassphraseRequired = errors.New("credentials: key file is encrypted, passphrase required")
	ErrEmptyPassphrase    = errors.New("credentials: empty passphrase")
)

// PassphraseFunc is called once when an encrypted key file is found.
type PassphraseFunc func() (string, error)

// IsEncrypted reports whether data is an age file.
func IsEncrypted(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return bytes.HasPrefix(trimmed, []byte(ageHeader)) || bytes.HasPrefix(trimmed, []byte(armorHeader))
}

// LoadKey reads the key at path. passphrase may be nil for plain files.
func LoadKey(path string, passphrase PassphraseFunc) (*secp256k1.PrivateKey, error) {
	if err := pathutil.ValidateFilePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return ParseKey(data, passphrase)
}

// ParseKey decodes a key file's contents.
func ParseKey(data []byte, passphrase PassphraseFunc) (*secp256k1.PrivateKey, error) {
	if !IsEncrypted(data) {
		return safe.PrivateKeyFromHex(string(data))
	}
	if passphrase == nil {
		return nil, ErrPassphraseRequired
	}
	pass, err := passphrase()
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	plain, err := Decrypt(data, pass)
	if err != nil {
		return nil, err
	}
	return safe.PrivateKeyFromHex(string(plain))
}

// Decrypt opens an age scrypt file.
func Decrypt(data []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, err
	}
	identity.SetMaxWorkFactor(maxWorkFactor)

	var src io.Reader = bytes.NewReader(bytes.TrimSpace(data))
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(armorHeader)) {
		src = armor.NewReader(bufio.NewReader(src))
	}
	r, err := age.Decrypt(src, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt key file: %w", err)
	}
	return io.ReadAll(r)
}

// EncryptOptions control how Encrypt writes a key file.
type EncryptOptions struct {
	// WorkFactor is the scrypt log2(N). Zero keeps the age default.
	WorkFactor int
	Armor      bool
}

// Encrypt seals plain under passphrase.
func Encrypt(plain []byte, passphrase string, opts EncryptOptions) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, err
	}
	if opts.WorkFactor > 0 {
		recipient.SetWorkFactor(opts.WorkFactor)
	}

	var buf bytes.Buffer
	var dst io.Writer = &buf
	var armored io.WriteCloser
	if opts.Armor {
		armored = armor.NewWriter(&buf)
		dst = armored
	}
	w, err := age.Encrypt(dst, recipient)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plain); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	if armored != nil {
		if err := armored.Close(); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
