// Package cryptox implements the credential vault: per-user key derivation
// from a process-wide master key and AES-GCM sealing of credential envelopes.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KDFIterations is the PBKDF2-HMAC-SHA256 work factor for user keys.
	KDFIterations = 100_000
	// KeySize is the derived key length (AES-256).
	KeySize = 32

	saltContext  = "shelfsync_user_salt"
	saltSize     = 16
	nonceSize    = 12
	formatV1     = byte(0x01)
	headerLength = 1 + nonceSize
)

// DeriveUserKey derives a 32-byte key for userID from the master key.
//
// The salt is the first 16 bytes of sha256(userID ":" context), so the same
// inputs always yield the same key and distinct user ids yield independent
// keys. The derivation is deliberately slow; Vault caches the result.
func DeriveUserKey(masterKey []byte, userID string) []byte {
	sum := sha256.Sum256([]byte(userID + ":" + saltContext))
	return pbkdf2.Key(masterKey, sum[:saltSize], KDFIterations, KeySize, sha256.New)
}

// Vault seals and opens credential blobs scoped to a user id.
// It is safe for concurrent use.
type Vault struct {
	masterKey []byte
	keys      sync.Map // userID -> cipher.AEAD
}

// NewVault returns a Vault for the given master key. An empty key is a
// configuration error; callers must not fall back to a generated key.
func NewVault(masterKey []byte) (*Vault, error) {
	if len(masterKey) == 0 {
		return nil, common.ErrMissingMasterKey
	}
	key := make([]byte, len(masterKey))
	copy(key, masterKey)
	return &Vault{masterKey: key}, nil
}

func (v *Vault) aead(userID string) (cipher.AEAD, error) {
	if cached, ok := v.keys.Load(userID); ok {
		return cached.(cipher.AEAD), nil
	}

	key := DeriveUserKey(v.masterKey, userID)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	actual, _ := v.keys.LoadOrStore(userID, aesgcm)
	return actual.(cipher.AEAD), nil
}

// Encrypt seals plaintext for userID with AES-256-GCM and a fresh random
// nonce. The result is self-contained base64 text:
//
//	base64(version || nonce || ciphertext+tag)
//
// The user id is bound as additional data, so a blob copied to another
// user's record does not open under that user's key.
func (v *Vault) Encrypt(userID string, plaintext []byte) (string, error) {
	aesgcm, err := v.aead(userID)
	if err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("vault: nonce: %w", err)
	}

	out := make([]byte, 0, headerLength+len(plaintext)+aesgcm.Overhead())
	out = append(out, formatV1)
	out = append(out, nonce...)
	out = aesgcm.Seal(out, nonce, plaintext, []byte(userID))

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a blob produced by Encrypt for the same userID.
// Any malformed input, wrong key or tampered byte yields
// common.ErrDecryptionFailure and no plaintext.
func (v *Vault) Decrypt(userID string, ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, common.ErrDecryptionFailure
	}
	if len(raw) < headerLength || raw[0] != formatV1 {
		return nil, common.ErrDecryptionFailure
	}

	aesgcm, err := v.aead(userID)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}

	nonce := raw[1:headerLength]
	plaintext, err := aesgcm.Open(nil, nonce, raw[headerLength:], []byte(userID))
	if err != nil {
		return nil, common.ErrDecryptionFailure
	}
	return plaintext, nil
}

// SealJSON marshals v to JSON and encrypts it for userID.
func (v *Vault) SealJSON(userID string, value any) (string, error) {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("vault: marshal: %w", err)
	}
	defer common.WipeByteArray(plaintext)
	return v.Encrypt(userID, plaintext)
}

// OpenJSON decrypts ciphertext for userID and unmarshals it into target.
func (v *Vault) OpenJSON(userID string, ciphertext string, target any) error {
	plaintext, err := v.Decrypt(userID, ciphertext)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)
	if err := json.Unmarshal(plaintext, target); err != nil {
		return fmt.Errorf("vault: unmarshal: %w", err)
	}
	return nil
}
