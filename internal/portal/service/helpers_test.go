package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openreport/portal/internal/portal/service"
	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/internal/portal/store/drivers/sqlite"
	"github.com/openreport/portal/pkg/cryptox"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// submitInquiry pushes one encrypted submission through the full pipeline
// and returns the new inquiry id.
func submitInquiry(t *testing.T, st store.Store, title, content, email, name string) string {
	t.Helper()
	ctx := context.Background()

	keys := &service.KeyService{Store: st}
	subs := &service.SubmissionService{Store: st, Keys: keys}

	issued, err := keys.IssueKey(ctx)
	require.NoError(t, err)

	cipher, err := cryptox.NewSessionCipher(issued.Secret)
	require.NoError(t, err)

	id, err := subs.Submit(ctx, service.SubmitRequest{
		KeyID:   issued.KeyID,
		Title:   mustEncrypt(t, cipher, title),
		Content: mustEncrypt(t, cipher, content),
		Email:   mustEncrypt(t, cipher, email),
		Name:    mustEncrypt(t, cipher, name),
	})
	require.NoError(t, err)
	return id
}

func mustEncrypt(t *testing.T, c cryptox.FieldCipher, plaintext string) cryptox.EncryptedField {
	t.Helper()
	f, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	return f
}
