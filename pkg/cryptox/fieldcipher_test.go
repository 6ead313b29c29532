package cryptox_test

import (
	"encoding/base64"
	"testing"

	"github.com/openreport/portal/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSessionCipherRoundTrip(t *testing.T) {
	t.Parallel()

	key, err := cryptox.GenerateSessionKey()
	require.NoError(t, err)
	require.Len(t, key, cryptox.SessionKeySize*2, "key should be hex-encoded 32 bytes")

	c, err := cryptox.NewSessionCipher(key)
	require.NoError(t, err)

	for _, plaintext := range []string{
		"hello",
		"",
		"누수 제보", // multi-byte UTF-8 survives the round trip
		"a@b.com",
		string(make([]byte, 64*1024)),
	} {
		sealed, err := c.Encrypt(plaintext)
		require.NoError(t, err)

		opened, err := c.Decrypt(sealed)
		require.NoError(t, err)
		require.Equal(t, plaintext, opened)
	}
}

func TestSessionCipherFreshNoncePerCall(t *testing.T) {
	t.Parallel()

	key, err := cryptox.GenerateSessionKey()
	require.NoError(t, err)
	c, err := cryptox.NewSessionCipher(key)
	require.NoError(t, err)

	a, err := c.Encrypt("same plaintext")
	require.NoError(t, err)
	b, err := c.Encrypt("same plaintext")
	require.NoError(t, err)

	require.NotEqual(t, a.IV, b.IV, "nonces must be unique per call")
	require.NotEqual(t, a.Encrypted, b.Encrypted)
}

func TestSessionCipherTamperDetection(t *testing.T) {
	t.Parallel()

	key, err := cryptox.GenerateSessionKey()
	require.NoError(t, err)
	c, err := cryptox.NewSessionCipher(key)
	require.NoError(t, err)

	sealed, err := c.Encrypt("sensitive report body")
	require.NoError(t, err)

	flipBit := func(encoded string) string {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		raw[0] ^= 0x01
		return base64.StdEncoding.EncodeToString(raw)
	}

	t.Run("flipped ciphertext bit", func(t *testing.T) {
		tampered := sealed
		tampered.Encrypted = flipBit(sealed.Encrypted)
		_, err := c.Decrypt(tampered)
		require.ErrorIs(t, err, cryptox.ErrDecrypt)
	})

	t.Run("flipped iv bit", func(t *testing.T) {
		tampered := sealed
		tampered.IV = flipBit(sealed.IV)
		_, err := c.Decrypt(tampered)
		require.ErrorIs(t, err, cryptox.ErrDecrypt)
	})

	t.Run("wrong key", func(t *testing.T) {
		otherKey, err := cryptox.GenerateSessionKey()
		require.NoError(t, err)
		other, err := cryptox.NewSessionCipher(otherKey)
		require.NoError(t, err)

		_, err = other.Decrypt(sealed)
		require.ErrorIs(t, err, cryptox.ErrDecrypt)
	})

	t.Run("malformed base64", func(t *testing.T) {
		tampered := sealed
		tampered.Encrypted = "!!not-base64!!"
		_, err := c.Decrypt(tampered)
		require.ErrorIs(t, err, cryptox.ErrDecrypt)
	})
}

func TestNewSessionCipherRejectsBadKeys(t *testing.T) {
	t.Parallel()

	for _, keyHex := range []string{
		"",
		"abc123",            // too short
		"zz" + validKeyTail, // not hex
	} {
		_, err := cryptox.NewSessionCipher(keyHex)
		require.ErrorIs(t, err, cryptox.ErrBadKey, "key %q", keyHex)
	}
}

// 62 hex chars; prefixed with two more to make a 64-char candidate.
const validKeyTail = "00112233445566778899aabbccddeeff00112233445566778899aabbccddee"

func TestDifferentFieldsDoNotShareNonces(t *testing.T) {
	t.Parallel()

	key, err := cryptox.GenerateSessionKey()
	require.NoError(t, err)
	c, err := cryptox.NewSessionCipher(key)
	require.NoError(t, err)

	fields := []string{"title", "content", "email", "name", "phone"}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		sealed, err := c.Encrypt(f)
		require.NoError(t, err)
		_, dup := seen[sealed.IV]
		require.False(t, dup, "nonce reused across fields")
		seen[sealed.IV] = struct{}{}
	}
}
