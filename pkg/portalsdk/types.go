package portalsdk

import (
	"time"

	"github.com/openreport/portal/pkg/cryptox"
)

// KeyResponse is the one-time key issued for a single encrypted request.
type KeyResponse struct {
	KeyID     string `json:"keyId"`
	Key       string `json:"key"` // hex-encoded AES-256 key
	ExpiresIn int    `json:"expiresIn"`
}

// SubmitRequest carries an encrypted inquiry submission. Phone is optional.
type SubmitRequest struct {
	KeyID   string                  `json:"keyId"`
	Title   cryptox.EncryptedField  `json:"title"`
	Content cryptox.EncryptedField  `json:"content"`
	Email   cryptox.EncryptedField  `json:"email"`
	Name    cryptox.EncryptedField  `json:"name"`
	Phone   *cryptox.EncryptedField `json:"phone,omitempty"`
}

// SubmitResponse acknowledges a stored inquiry. The auth code is not in the
// response; it arrives by email.
type SubmitResponse struct {
	ID string `json:"id"`
}

// VerifyRequest carries encrypted verification credentials.
type VerifyRequest struct {
	KeyID    string                 `json:"keyId"`
	Email    cryptox.EncryptedField `json:"email"`
	AuthCode cryptox.EncryptedField `json:"authCode"`
}

// VerifyResponse wraps the matched inquiry in a data envelope alongside the
// fresh key that decrypts it.
type VerifyResponse struct {
	AESKey string     `json:"aesKey"`
	Data   VerifyData `json:"data"`
}

// VerifyData is the matched inquiry, every sensitive field encrypted under
// the response key.
type VerifyData struct {
	ID     string `json:"id"`
	Status string `json:"status"`

	Title   cryptox.EncryptedField  `json:"title"`
	Content cryptox.EncryptedField  `json:"content"`
	Email   cryptox.EncryptedField  `json:"email"`
	Name    cryptox.EncryptedField  `json:"name"`
	Phone   *cryptox.EncryptedField `json:"phone,omitempty"`

	ReplyTitle   *cryptox.EncryptedField `json:"reply_title,omitempty"`
	ReplyContent *cryptox.EncryptedField `json:"reply_content,omitempty"`
	RepliedAt    *time.Time              `json:"replied_at,omitempty"`

	Replies []ReplyPayload `json:"replies,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReplyPayload is one encrypted admin reply in a VerifyResponse. Status is
// plaintext, like the timestamps.
type ReplyPayload struct {
	ID        string                 `json:"id"`
	Title     cryptox.EncryptedField `json:"title"`
	Content   cryptox.EncryptedField `json:"content"`
	Status    string                 `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
}

// Inquiry is the decrypted result of a verification, assembled client-side.
type Inquiry struct {
	InquiryID string
	Status    string
	Title     string
	Content   string
	Email     string
	Name      string
	Phone     string
	Replies   []Reply
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reply is one decrypted admin reply.
type Reply struct {
	ID        string
	Title     string
	Content   string
	Status    string
	CreatedAt time.Time
}

// ErrorResponse is the generic error body returned by the service.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by the health check endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency status in a readiness response.
type HealthChecks struct {
	Database string `json:"database"`
}
