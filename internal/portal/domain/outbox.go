package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Outbox job types. The type tag discriminates the payload shape.
const (
	JobSubmitUserEmail  = "submit_user_email"
	JobSubmitAdminNotify = "submit_admin_notify"
	JobReplyUserEmail   = "reply_user_email"
)

// Outbox job statuses. A job moves pending -> processing -> sent, or back
// to pending on failure with attempts incremented. After MaxJobAttempts it
// lands in failed, the dead-letter terminal state. Jobs never leave sent.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusSent       = "sent"
	JobStatusFailed     = "failed"
)

// MaxJobAttempts is the dead-letter cutoff. With backoff capped at 60
// minutes this bounds a permanently failing job to roughly 18 hours of
// retries before it stops consuming worker batches.
const MaxJobAttempts = 20

// OutboxJob is a durable side-effect intent written in the same transaction
// as the state change that triggered it.
type OutboxJob struct {
	ID            string
	Type          string
	Payload       json.RawMessage
	Status        string
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	LockedAt      *time.Time
	LockedBy      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SubmitUserEmailPayload carries what the auth-code email needs.
type SubmitUserEmailPayload struct {
	InquiryID string `json:"inquiry_id"`
	Email     string `json:"email"`
	AuthCode  string `json:"auth_code"`
}

// SubmitAdminNotifyPayload triggers the admin fan-out for a new inquiry.
type SubmitAdminNotifyPayload struct {
	InquiryID string `json:"inquiry_id"`
}

// ReplyUserEmailPayload carries what the reply notification email needs.
type ReplyUserEmailPayload struct {
	InquiryID    string `json:"inquiry_id"`
	Email        string `json:"email"`
	ReplyTitle   string `json:"reply_title"`
	ReplyContent string `json:"reply_content"`
}

// EncodeJobPayload marshals a typed payload, rejecting payloads that don't
// match the job type so a mismatched enqueue fails at write time rather
// than at dispatch.
func EncodeJobPayload(jobType string, payload any) (json.RawMessage, error) {
	ok := false
	switch jobType {
	case JobSubmitUserEmail:
		_, ok = payload.(SubmitUserEmailPayload)
	case JobSubmitAdminNotify:
		_, ok = payload.(SubmitAdminNotifyPayload)
	case JobReplyUserEmail:
		_, ok = payload.(ReplyUserEmailPayload)
	default:
		return nil, fmt.Errorf("unknown outbox job type %q", jobType)
	}
	if !ok {
		return nil, fmt.Errorf("payload %T does not match job type %q", payload, jobType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", jobType, err)
	}
	return raw, nil
}
