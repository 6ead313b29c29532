package cryptox_test

import (
	"strings"
	"testing"

	"github.com/openreport/portal/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateAuthCode(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 256)
	for range 256 {
		code, err := cryptox.GenerateAuthCode()
		require.NoError(t, err)
		require.Len(t, code, cryptox.AuthCodeLength)

		for _, r := range code {
			require.True(t,
				(r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
				"unexpected character %q in code %q", r, code)
		}
		seen[code] = struct{}{}
	}

	// 256 draws from a 2.2e9 space should essentially never collide.
	require.Greater(t, len(seen), 250)
}

func TestNormalizeAuthCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, "AB12CD", cryptox.NormalizeAuthCode("ab12cd"))
	require.Equal(t, "AB12CD", cryptox.NormalizeAuthCode("  Ab12Cd\n"))
	require.Equal(t, "AB12CD", cryptox.NormalizeAuthCode("AB12CD"))
}

func TestSecureCompare(t *testing.T) {
	t.Parallel()

	require.True(t, cryptox.SecureCompare("cron-secret", "cron-secret"))
	require.False(t, cryptox.SecureCompare("cron-secret", "cron-secret2"))
	require.False(t, cryptox.SecureCompare("", "x"))
	require.True(t, cryptox.SecureCompare("", ""))
}

func TestFingerprintTokenDeterministic(t *testing.T) {
	t.Parallel()

	a := cryptox.FingerprintToken("token")
	b := cryptox.FingerprintToken("token")
	require.Equal(t, a, b)
	require.NotEqual(t, a, cryptox.FingerprintToken("other"))
	require.False(t, strings.Contains(a, "="), "fingerprint should be unpadded base64url")
}
