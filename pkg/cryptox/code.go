package cryptox

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// AuthCodeLength is the length of the human-readable auth code issued with
// every submission.
const AuthCodeLength = 6

// authCodeAlphabet is the uppercase alphanumeric charset. 36^6 codes is
// ample because lookup is always keyed by (email, code), never code alone.
const authCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateAuthCode returns a 6-character code drawn uniformly from [A-Z0-9].
// Uses rejection sampling so every character is equally likely.
func GenerateAuthCode() (string, error) {
	const n = byte(len(authCodeAlphabet))
	// Largest multiple of n that fits in a byte; values at or above it are
	// rejected to avoid modulo bias.
	limit := byte(256 - (256 % int(n)))

	code := make([]byte, 0, AuthCodeLength)
	buf := make([]byte, 16)
	for len(code) < AuthCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("cryptox: failed to generate auth code: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			code = append(code, authCodeAlphabet[b%n])
			if len(code) == AuthCodeLength {
				break
			}
		}
	}

	return string(code), nil
}

// NormalizeAuthCode canonicalizes a user-entered code for comparison.
// Codes are case-insensitive on input and stored uppercase.
func NormalizeAuthCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
