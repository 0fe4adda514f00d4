package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	keySize = 32 // AES-256
	ivSize  = 16
	tagSize = 16
)

var (
	ErrInvalidEnvelope = errors.New("vault: invalid credential envelope")
	// ErrDecryptFailed covers both a wrong key and a tampered
	// ciphertext; callers must treat it as terminal.
	ErrDecryptFailed = errors.New("vault: decryption failed")
)

// Vault encrypts third-party integration credentials with AES-256-GCM.
// The stored envelope is "hex(iv):hex(ciphertext):hex(tag)".
type Vault struct {
	key []byte
}

// New derives the cipher key from the configured master secret with
// HKDF-SHA256 so the raw config value never touches the cipher.
func New(masterSecret string) (*Vault, error) {
	if masterSecret == "" {
		return nil, errors.New("vault: master secret is required")
	}

	r := hkdf.New(sha256.New, []byte(masterSecret), []byte("deskcore-vault"), []byte("credential-encryption"))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return &Vault{key: key}, nil
}

func (v *Vault) EncryptCredentials(credentials map[string]interface{}) (string, error) {
	plaintext, err := json.Marshal(credentials)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	// Seal appends the auth tag; split it off so the envelope carries
	// the three parts separately.
	sealed := gcm.Seal(nil, iv, plaintext, nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext) + ":" + hex.EncodeToString(tag), nil
}

func (v *Vault) DecryptCredentials(envelope string) (map[string]interface{}, error) {
	parts := strings.Split(envelope, ":")
	if len(parts) != 3 {
		return nil, ErrInvalidEnvelope
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivSize {
		return nil, ErrInvalidEnvelope
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidEnvelope
	}
	tag, err := hex.DecodeString(parts[2])
	if err != nil || len(tag) != tagSize {
		return nil, ErrInvalidEnvelope
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		// Tag mismatch: wrong key or tampered data. Fail closed.
		return nil, ErrDecryptFailed
	}

	var credentials map[string]interface{}
	if err := json.Unmarshal(plaintext, &credentials); err != nil {
		return nil, ErrDecryptFailed
	}
	return credentials, nil
}
