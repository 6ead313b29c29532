package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// SessionKeySize is the byte length of a one-time session key (AES-256).
const SessionKeySize = 32

var (
	// ErrDecrypt reports a failed field decryption: malformed ciphertext,
	// tampered data, or the wrong key. Callers must not distinguish which.
	ErrDecrypt = errors.New("cryptox: decryption failed")

	// ErrBadKey reports key material that is not a valid hex-encoded AES-256 key.
	ErrBadKey = errors.New("cryptox: invalid key material")
)

// EncryptedField is the wire form of a single encrypted text field.
// The IV is a random 96-bit nonce, base64-encoded; Encrypted is the
// ciphertext including the GCM auth tag, base64-encoded. Fields are
// never persisted in this form, they exist only in transit.
type EncryptedField struct {
	IV        string `json:"iv"`
	Encrypted string `json:"encrypted"`
}

// FieldCipher encrypts and decrypts individual text fields. Two variants
// exist: SessionCipher (one-time symmetric key, canonical) and
// AsymmetricCipher (RSA-OAEP, kept as a documented alternative). Each field
// is encrypted independently so no plaintext correlates across fields.
type FieldCipher interface {
	Encrypt(plaintext string) (EncryptedField, error)
	Decrypt(f EncryptedField) (string, error)
}

// SessionCipher is an AES-256-GCM FieldCipher scoped to a single
// request/response pair. The same key encrypts every field of one payload,
// but every call draws a fresh nonce.
type SessionCipher struct {
	aead cipher.AEAD
}

// NewSessionCipher builds a cipher from a hex-encoded 256-bit key, the form
// keys travel in between client and server.
func NewSessionCipher(keyHex string) (*SessionCipher, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil || len(key) != SessionKeySize {
		return nil, ErrBadKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create GCM: %w", err)
	}

	return &SessionCipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *SessionCipher) Encrypt(plaintext string) (EncryptedField, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return EncryptedField{}, fmt.Errorf("cryptox: failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)

	return EncryptedField{
		IV:        base64.StdEncoding.EncodeToString(nonce),
		Encrypted: base64.StdEncoding.EncodeToString(sealed),
	}, nil
}

// Decrypt opens a sealed field and verifies its auth tag. Any bit flip in
// the IV or ciphertext yields ErrDecrypt, never silent garbage.
func (c *SessionCipher) Decrypt(f EncryptedField) (string, error) {
	nonce, err := base64.StdEncoding.DecodeString(f.IV)
	if err != nil || len(nonce) != c.aead.NonceSize() {
		return "", ErrDecrypt
	}

	sealed, err := base64.StdEncoding.DecodeString(f.Encrypted)
	if err != nil {
		return "", ErrDecrypt
	}

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plaintext), nil
}

// GenerateSessionKey returns a fresh random 256-bit key as lowercase hex.
// One is minted per submission, per verification request, and per encrypted
// response; keys are never reused across operations.
func GenerateSessionKey() (string, error) {
	key := make([]byte, SessionKeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate session key: %w", err)
	}
	return hex.EncodeToString(key), nil
}
