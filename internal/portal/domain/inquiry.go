package domain

import "time"

// Inquiry statuses.
const (
	InquiryStatusPending    = "pending"
	InquiryStatusProcessing = "processing"
	InquiryStatusCompleted  = "completed"
)

// Inquiry is a decrypted report stored server-side. The server is the trust
// boundary: fields travel encrypted but rest in plaintext here.
type Inquiry struct {
	ID       string
	Title    string
	Content  string
	Email    string
	Name     string
	Phone    string // optional, empty when not provided
	AuthCode string // 6 chars, [A-Z0-9], stored uppercase
	Status   string

	// Legacy single-reply fields, superseded by the Reply list but still
	// populated for old records.
	ReplyTitle   string
	ReplyContent string
	RepliedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reply is one admin response to an inquiry. Append-only; ordered ascending
// by creation for the reporter, descending for the admin list.
type Reply struct {
	ID        string
	InquiryID string
	Title     string
	Content   string
	Status    string
	CreatedBy string
	CreatedAt time.Time
}
