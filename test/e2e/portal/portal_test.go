package portal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	httpapi "github.com/openreport/portal/internal/portal/http"
	"github.com/openreport/portal/internal/portal/service"
	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/internal/portal/store/drivers/sqlite"
	"github.com/openreport/portal/pkg/cryptox"
	"github.com/openreport/portal/pkg/httpx"
	"github.com/openreport/portal/pkg/portalsdk"
)

const (
	adminJWTSecret = "e2e-admin-secret"
	cronSecret     = "e2e-cron-secret"
)

// capturingMailer records outgoing mail instead of dialing SMTP.
type capturingMailer struct {
	mu        sync.Mutex
	authCodes map[string]string // email -> latest auth code
	replies   []string          // inquiry ids
}

func (m *capturingMailer) SendAuthCodeEmail(_ context.Context, email, authCode, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.authCodes == nil {
		m.authCodes = map[string]string{}
	}
	m.authCodes[email] = authCode
	return nil
}

func (m *capturingMailer) SendReplyEmail(_ context.Context, _, inquiryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, inquiryID)
	return nil
}

func (m *capturingMailer) authCodeFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authCodes[email]
}

type noopAlerter struct{}

func (noopAlerter) NotifyAdmin(context.Context, string, string, string) error { return nil }

type env struct {
	server *httptest.Server
	client *portalsdk.Client
	mailer *capturingMailer
	store  store.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mailer := &capturingMailer{}
	keys := &service.KeyService{Store: st}
	outbox := &service.OutboxService{
		Store:    st,
		Mail:     mailer,
		Alerter:  noopAlerter{},
		WorkerID: "e2e",
	}

	logger := slog.New(slog.DiscardHandler)
	router := httpapi.NewRouter([]byte(adminJWTSecret), cronSecret, 20, "e2e", st, logger)
	router.KeyService = keys
	router.SubmissionService = &service.SubmissionService{Store: st, Keys: keys}
	router.VerificationService = &service.VerificationService{Store: st, Keys: keys}
	router.AdminService = &service.AdminService{Store: st}
	router.OutboxService = outbox
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &env{
		server: server,
		client: portalsdk.NewClient(server.URL),
		mailer: mailer,
		store:  st,
	}
}

// drainOutbox triggers the cron endpoint the way an external scheduler would.
func (e *env) drainOutbox(t *testing.T) service.BatchResult {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/v1/internal/process-outbox", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+cronSecret)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out service.BatchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func adminClaims(subject, email string) httpx.AdminClaims {
	return httpx.AdminClaims{
		Email: email,
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func mintAdminToken(t *testing.T, subject, email string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, adminClaims(subject, email)).
		SignedString([]byte(adminJWTSecret))
	require.NoError(t, err)
	return token
}

func (e *env) adminDo(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestPortalEndToEnd(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Reporter submits an encrypted inquiry through the SDK.
	inquiryID, err := e.client.Submit(ctx, portalsdk.Submission{
		Title:   "Expense report manipulation",
		Content: "Invoices in Q2 were altered after approval.",
		Email:   "reporter@example.com",
		Name:    "Anonymous",
	})
	require.NoError(t, err)
	require.NotEmpty(t, inquiryID)

	// The auth code email is delivered by the outbox, not inline.
	require.Empty(t, e.mailer.authCodeFor("reporter@example.com"))
	res := e.drainOutbox(t)
	require.Equal(t, 2, res.Processed)
	require.Equal(t, 2, res.OK)

	authCode := e.mailer.authCodeFor("reporter@example.com")
	require.Len(t, authCode, 6)

	// Admin reviews the inquiry and posts a reply.
	token := mintAdminToken(t, "admin-1", "admin@example.com")

	resp := e.adminDo(t, http.MethodGet, "/v1/admin/inquiries", token, nil)
	var listed []httpapi.AdminInquiry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed, 1)
	require.Equal(t, inquiryID, listed[0].ID)

	resp = e.adminDo(t, http.MethodPost, "/v1/admin/inquiries/"+inquiryID+"/replies", token,
		httpapi.ReplyCreateRequest{Title: "Investigation opened", Content: "We have assigned a case officer."})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	res = e.drainOutbox(t)
	require.Equal(t, 1, res.OK)
	require.Equal(t, []string{inquiryID}, e.mailer.replies)

	// Reporter retrieves the inquiry, reply included, over the encrypted
	// channel using the emailed auth code.
	inquiry, err := e.client.Verify(ctx, "reporter@example.com", authCode)
	require.NoError(t, err)
	require.Equal(t, inquiryID, inquiry.InquiryID)
	require.Equal(t, "Expense report manipulation", inquiry.Title)
	require.Equal(t, "processing", inquiry.Status)
	require.Len(t, inquiry.Replies, 1)
	require.Equal(t, "Investigation opened", inquiry.Replies[0].Title)
	require.Equal(t, "We have assigned a case officer.", inquiry.Replies[0].Content)
	require.Equal(t, "pending", inquiry.Replies[0].Status)
}

// TestPortalWireContract pins the public JSON shapes down to the field
// names, since external clients are written against them rather than the
// Go SDK: camelCase keyId/expiresIn/authCode, a bare {id} on submit, and
// the {aesKey, data:{...}} envelope on verify.
func TestPortalWireContract(t *testing.T) {
	e := newEnv(t)

	resp, err := http.Get(e.server.URL + "/v1/keys")
	require.NoError(t, err)
	var key map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&key))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, key, "keyId")
	require.Contains(t, key, "key")
	require.EqualValues(t, 300, key["expiresIn"])

	enc := func(c cryptox.FieldCipher, plaintext string) cryptox.EncryptedField {
		f, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		return f
	}

	cipher, err := cryptox.NewSessionCipher(key["key"].(string))
	require.NoError(t, err)
	body, err := json.Marshal(map[string]any{
		"keyId":   key["keyId"],
		"title":   enc(cipher, "Wire title"),
		"content": enc(cipher, "Wire content"),
		"email":   enc(cipher, "reporter@example.com"),
		"name":    enc(cipher, "Reporter"),
	})
	require.NoError(t, err)

	resp, err = http.Post(e.server.URL+"/v1/inquiries", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var submitted map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitted))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	inquiryID, ok := submitted["id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, inquiryID)

	// A reply gives the verify payload a populated replies array.
	e.drainOutbox(t)
	authCode := e.mailer.authCodeFor("reporter@example.com")
	token := mintAdminToken(t, "admin-1", "admin@example.com")
	replyResp := e.adminDo(t, http.MethodPost, "/v1/admin/inquiries/"+inquiryID+"/replies", token,
		httpapi.ReplyCreateRequest{Title: "Noted", Content: "Under review."})
	require.Equal(t, http.StatusCreated, replyResp.StatusCode)
	replyResp.Body.Close()

	resp, err = http.Get(e.server.URL + "/v1/keys")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&key))
	resp.Body.Close()
	cipher, err = cryptox.NewSessionCipher(key["key"].(string))
	require.NoError(t, err)

	body, err = json.Marshal(map[string]any{
		"keyId":    key["keyId"],
		"email":    enc(cipher, "reporter@example.com"),
		"authCode": enc(cipher, authCode),
	})
	require.NoError(t, err)

	resp, err = http.Post(e.server.URL+"/v1/inquiries/verify", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var verified map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&verified))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Contains(t, verified, "aesKey")
	data, ok := verified["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, inquiryID, data["id"])
	require.Contains(t, data, "status")
	require.Contains(t, data, "created_at")

	replies, ok := data["replies"].([]any)
	require.True(t, ok)
	require.Len(t, replies, 1)
	reply, ok := replies[0].(map[string]any)
	require.True(t, ok)
	require.Contains(t, reply, "status")
	require.Contains(t, reply, "created_at")
}

func TestPortalVerifyRejectsBadCredentials(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client.Submit(ctx, portalsdk.Submission{
		Title:   "t",
		Content: "c",
		Email:   "reporter@example.com",
		Name:    "n",
	})
	require.NoError(t, err)
	e.drainOutbox(t)
	authCode := e.mailer.authCodeFor("reporter@example.com")

	_, wrongCode := e.client.Verify(ctx, "reporter@example.com", "ZZZZZZ")
	_, wrongEmail := e.client.Verify(ctx, "other@example.com", authCode)

	var codeErr, emailErr *portalsdk.APIError
	require.ErrorAs(t, wrongCode, &codeErr)
	require.ErrorAs(t, wrongEmail, &emailErr)

	// Wrong code and wrong email are indistinguishable.
	require.Equal(t, http.StatusUnauthorized, codeErr.StatusCode)
	require.Equal(t, emailErr.StatusCode, codeErr.StatusCode)
	require.Equal(t, emailErr.Message, codeErr.Message)
}

func TestPortalCronEndpointRequiresSecret(t *testing.T) {
	e := newEnv(t)

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/v1/internal/process-outbox", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer wrong-secret")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPortalAdminRoutesRequireJWT(t *testing.T) {
	e := newEnv(t)

	resp, err := http.Get(e.server.URL + "/v1/admin/inquiries")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A non-admin role is rejected with 403.
	claims := adminClaims("user-1", "user@example.com")
	claims.Role = "viewer"
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(adminJWTSecret))
	require.NoError(t, err)

	resp = e.adminDo(t, http.MethodGet, "/v1/admin/inquiries", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPortalHealthEndpoints(t *testing.T) {
	e := newEnv(t)

	for _, path := range []string{"/livez", "/readyz"} {
		resp, err := http.Get(e.server.URL + path)
		require.NoError(t, err)
		var health portalsdk.HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "ok", health.Status)
	}
}
