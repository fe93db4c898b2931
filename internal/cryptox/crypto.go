// Package cryptox implements the cipher provider protecting entry bodies at
// rest: AES-256-GCM with a per-encryption random nonce, and argon2id key
// derivation for passphrase-based keys.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/anchorapp/journal/internal/common"
	"github.com/anchorapp/journal/internal/keyring"
	"golang.org/x/crypto/argon2"
)

const (
	keySize   = 32
	nonceSize = 12

	// Keyring tags used by Provision.
	KeyTag  = "journal-body-key"
	SaltTag = "journal-kdf-salt"
)

// DeriveKey derives a 32-byte key from a passphrase and salt using argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// Cipher encrypts and decrypts entry bodies with AES-GCM. The zero value
// has no key and fails every operation with common.ErrKeyMissing.
type Cipher struct {
	key []byte
}

// NewCipher returns a Cipher using the given key. The key must be 16, 24 or
// 32 bytes.
func NewCipher(key []byte) (*Cipher, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("invalid key length %d", len(key))
	}
	return &Cipher{key: append([]byte(nil), key...)}, nil
}

// Provision fetches the body key from the keyring, generating and storing a
// fresh random key on first use.
func Provision(kr keyring.Keyring) (*Cipher, error) {
	key, err := kr.Get(KeyTag)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to read key from keyring: %w", err)
		}
		key = common.GenerateRandByteArray(keySize)
		if err := kr.Set(KeyTag, key); err != nil {
			return nil, fmt.Errorf("failed to store generated key: %w", err)
		}
	}
	return NewCipher(key)
}

// ProvisionWithPassphrase derives the body key from a passphrase using a
// random salt persisted in the keyring, so the same passphrase yields the
// same key across runs.
func ProvisionWithPassphrase(kr keyring.Keyring, passphrase []byte) (*Cipher, error) {
	salt, err := kr.Get(SaltTag)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to read salt from keyring: %w", err)
		}
		salt = common.GenerateRandByteArray(16)
		if err := kr.Set(SaltTag, salt); err != nil {
			return nil, fmt.Errorf("failed to store salt: %w", err)
		}
	}
	return NewCipher(DeriveKey(passphrase, salt))
}

// Encrypt seals plaintext with a fresh random 12-byte nonce. Ciphertext and
// nonce are returned separately.
func (c *Cipher) Encrypt(plaintext []byte) (ciphertext, nonce []byte, err error) {
	if len(c.key) == 0 {
		return nil, nil, common.ErrKeyMissing
	}

	nonce = make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	aesgcm, err := c.gcm()
	if err != nil {
		return nil, nil, err
	}

	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Decrypt opens ciphertext. An authentication failure (tampered data or a
// wrong key) is reported as common.ErrTampered.
func (c *Cipher) Decrypt(ciphertext, nonce []byte) ([]byte, error) {
	if len(c.key) == 0 {
		return nil, common.ErrKeyMissing
	}

	aesgcm, err := c.gcm()
	if err != nil {
		return nil, err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTampered, err)
	}
	return plaintext, nil
}

func (c *Cipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
