package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

// AsymmetricCipher is the legacy RSA-OAEP FieldCipher variant. The client
// encrypts each field under the server's public key; only the server can
// decrypt. It predates SessionCipher and cannot encrypt responses (the
// server holds no client key), which is why the session-key variant is
// canonical. Kept behind the same interface for payloads produced by old
// clients.
type AsymmetricCipher struct {
	pub  *rsa.PublicKey
	priv *rsa.PrivateKey
}

// NewAsymmetricCipher parses PEM-encoded keys. Either side may be empty:
// an encrypt-only cipher needs just the public key, a decrypt-only cipher
// just the private key.
func NewAsymmetricCipher(publicPEM, privatePEM []byte) (*AsymmetricCipher, error) {
	c := &AsymmetricCipher{}

	if len(publicPEM) > 0 {
		block, _ := pem.Decode(publicPEM)
		if block == nil {
			return nil, errors.New("cryptox: invalid public key PEM")
		}
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("cryptox: failed to parse public key: %w", err)
		}
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("cryptox: public key is not RSA")
		}
		c.pub = rsaKey
	}

	if len(privatePEM) > 0 {
		block, _ := pem.Decode(privatePEM)
		if block == nil {
			return nil, errors.New("cryptox: invalid private key PEM")
		}
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("cryptox: failed to parse private key: %w", err)
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("cryptox: private key is not RSA")
		}
		c.priv = rsaKey
		if c.pub == nil {
			c.pub = &rsaKey.PublicKey
		}
	}

	if c.pub == nil && c.priv == nil {
		return nil, errors.New("cryptox: no key material provided")
	}

	return c, nil
}

// Encrypt seals plaintext with RSA-OAEP (SHA-256). The IV field is unused
// in this variant and left empty.
func (c *AsymmetricCipher) Encrypt(plaintext string) (EncryptedField, error) {
	if c.pub == nil {
		return EncryptedField{}, errors.New("cryptox: cipher has no public key")
	}

	sealed, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, c.pub, []byte(plaintext), nil)
	if err != nil {
		return EncryptedField{}, fmt.Errorf("cryptox: RSA encryption failed: %w", err)
	}

	return EncryptedField{Encrypted: base64.StdEncoding.EncodeToString(sealed)}, nil
}

// Decrypt opens an RSA-OAEP sealed field.
func (c *AsymmetricCipher) Decrypt(f EncryptedField) (string, error) {
	if c.priv == nil {
		return "", errors.New("cryptox: cipher has no private key")
	}

	sealed, err := base64.StdEncoding.DecodeString(f.Encrypted)
	if err != nil {
		return "", ErrDecrypt
	}

	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, c.priv, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plaintext), nil
}
