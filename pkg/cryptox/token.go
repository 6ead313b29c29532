package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token,
// base64url-encoded. Used to compare shared secrets without handling the
// raw values directly.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// SecureCompare reports whether two secrets are equal in constant time.
// Both sides are fingerprinted first so the comparison itself never leaks
// anything about the secret length.
func SecureCompare(a, b string) bool {
	fa := FingerprintToken(a)
	fb := FingerprintToken(b)
	return subtle.ConstantTimeCompare([]byte(fa), []byte(fb)) == 1
}
