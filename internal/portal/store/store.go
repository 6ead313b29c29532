package store

import (
	"context"
	"errors"
	"time"

	"github.com/openreport/portal/internal/portal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Sub-repositories keep concerns tidy and testable,
// and make it obvious which operations participate in a transaction.
type Store interface {
	Keys() Keys
	Inquiries() Inquiries
	Replies() Replies
	Outbox() Outbox
	Admins() Admins

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise. This is the recommended way to do
	// multi-step writes (e.g. inquiry insert + outbox enqueue).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Keys interface {
	// CreateKey inserts a freshly issued one-time key.
	CreateKey(ctx context.Context, k domain.OneTimeKey) error

	// ConsumeKey atomically redeems a key: a single conditional update that
	// only succeeds for an unconsumed, unexpired row, returning the secret.
	// Two concurrent redemptions of the same key must not both succeed.
	// Returns ErrNotFound when the key is missing, consumed, or expired.
	ConsumeKey(ctx context.Context, keyID string, now time.Time) (string, error)

	// DeleteKey removes a key row regardless of state.
	DeleteKey(ctx context.Context, keyID string) error

	// DeleteExpiredKeys sweeps expired and consumed rows.
	DeleteExpiredKeys(ctx context.Context, now time.Time) (int64, error)
}

type Inquiries interface {
	// CreateInquiry inserts a new inquiry (id is provided by app via ULID).
	CreateInquiry(ctx context.Context, inq domain.Inquiry) error

	// GetInquiryByID returns an inquiry by id.
	GetInquiryByID(ctx context.Context, id string) (domain.Inquiry, error)

	// GetInquiryByCredentials looks up by exact (email, auth_code) match.
	// The code must already be normalized to uppercase.
	GetInquiryByCredentials(ctx context.Context, email, authCode string) (domain.Inquiry, error)

	// ListInquiries returns all inquiries, newest first (admin view).
	ListInquiries(ctx context.Context) ([]domain.Inquiry, error)

	// UpdateInquiryStatus sets the status and bumps updated_at.
	UpdateInquiryStatus(ctx context.Context, id, status string) error

	// SetInquiryReply populates the legacy single-reply fields and bumps
	// updated_at. Called for the latest reply so old readers keep working.
	SetInquiryReply(ctx context.Context, id, title, content string, repliedAt time.Time) error
}

type Replies interface {
	// CreateReply appends a reply to an inquiry.
	CreateReply(ctx context.Context, r domain.Reply) error

	// ListRepliesByInquiry returns an inquiry's replies ordered by
	// created_at, ascending for the reporter view and descending for admin.
	ListRepliesByInquiry(ctx context.Context, inquiryID string, ascending bool) ([]domain.Reply, error)
}

type Outbox interface {
	// EnqueueJob inserts a pending job. Callers enqueue in the same
	// transaction as the triggering write.
	EnqueueJob(ctx context.Context, job domain.OutboxJob) error

	// GetJobByID returns a job by id.
	GetJobByID(ctx context.Context, id string) (domain.OutboxJob, error)

	// ListDueJobs returns up to limit pending jobs whose next_attempt_at
	// has passed, oldest first.
	ListDueJobs(ctx context.Context, now time.Time, limit int) ([]domain.OutboxJob, error)

	// ClaimJob atomically moves a pending, due job to processing. At most
	// one concurrent caller wins; losers get ErrNotFound.
	ClaimJob(ctx context.Context, id string, now time.Time, lockedBy string) (domain.OutboxJob, error)

	// MarkJobSent completes a processing job. Sent is terminal.
	MarkJobSent(ctx context.Context, id string, now time.Time) error

	// RescheduleJob returns a processing job to pending with the attempt
	// count, next attempt time, and last error recorded; the lock is cleared.
	RescheduleJob(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastError string, now time.Time) error

	// MarkJobFailed moves a processing job to the failed dead-letter state.
	MarkJobFailed(ctx context.Context, id string, attempts int, lastError string, now time.Time) error

	// ReleaseStuckJobs requeues jobs locked in processing since before
	// cutoff (a worker crashed mid-claim). Attempts are not incremented.
	ReleaseStuckJobs(ctx context.Context, cutoff time.Time, now time.Time) (int64, error)

	// DeleteFinishedJobs sweeps sent and failed jobs older than cutoff.
	DeleteFinishedJobs(ctx context.Context, cutoff time.Time) (int64, error)
}

type Admins interface {
	// UpsertAdmin creates or updates a roster entry.
	UpsertAdmin(ctx context.Context, a domain.Admin) error

	// GetAdminByID returns a roster entry by id.
	GetAdminByID(ctx context.Context, id string) (domain.Admin, error)

	// ListAdmins returns the full roster ordered by creation date.
	ListAdmins(ctx context.Context) ([]domain.Admin, error)

	// UpdateAdminNotifications flips the fan-out opt-in for an admin.
	UpdateAdminNotifications(ctx context.Context, id string, receive bool) error
}
