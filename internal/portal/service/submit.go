package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openreport/portal/internal/portal/domain"
	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/pkg/cryptox"
	"github.com/openreport/portal/pkg/idx"
	"github.com/openreport/portal/pkg/slogx"
)

// ErrMissingField reports a submission without all required encrypted fields.
var ErrMissingField = errors.New("missing required fields")

// SubmitRequest is an inbound encrypted submission. Phone is optional;
// everything else is required.
type SubmitRequest struct {
	KeyID   string
	Title   cryptox.EncryptedField
	Content cryptox.EncryptedField
	Email   cryptox.EncryptedField
	Name    cryptox.EncryptedField
	Phone   *cryptox.EncryptedField
}

// SubmissionService turns an encrypted submission into a stored inquiry
// plus its notification jobs. No email is sent on this path; the user-facing
// latency is one database transaction, and delivery happens from the outbox.
type SubmissionService struct {
	Store store.Store
	Keys  *KeyService
}

// Submit validates, redeems the one-time key, decrypts every field, and
// persists the inquiry together with both outbox jobs in one transaction.
// Any decrypt failure aborts the whole submission before anything is
// written, so a partial payload never produces a partial inquiry.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	log := slogx.FromContext(ctx)

	// 1. All required encrypted fields must be present before the key is
	// spent; a malformed request must not burn the caller's key.
	if req.KeyID == "" ||
		req.Title.Encrypted == "" || req.Content.Encrypted == "" ||
		req.Email.Encrypted == "" || req.Name.Encrypted == "" {
		return "", ErrMissingField
	}

	// 2. Redeem the one-time key. This closes the key permanently, even if
	// a later step fails.
	secret, err := s.Keys.RedeemKey(ctx, req.KeyID)
	if err != nil {
		return "", err
	}

	cipher, err := cryptox.NewSessionCipher(secret)
	if err != nil {
		log.Error("stored key secret is unusable", slog.String("key_id", req.KeyID), slog.Any("error", err))
		return "", ErrInvalidKey
	}

	// 3. Decrypt every field. A tag mismatch on any field aborts the whole
	// submission; the error is indistinguishable from a wrong key.
	title, err := cipher.Decrypt(req.Title)
	if err != nil {
		return "", ErrInvalidKey
	}
	content, err := cipher.Decrypt(req.Content)
	if err != nil {
		return "", ErrInvalidKey
	}
	email, err := cipher.Decrypt(req.Email)
	if err != nil {
		return "", ErrInvalidKey
	}
	name, err := cipher.Decrypt(req.Name)
	if err != nil {
		return "", ErrInvalidKey
	}
	phone := ""
	if req.Phone != nil && req.Phone.Encrypted != "" {
		if phone, err = cipher.Decrypt(*req.Phone); err != nil {
			return "", ErrInvalidKey
		}
	}

	// 4. Mint the auth code. Collisions with other inquiries are not
	// checked; lookup is by (email, code), never code alone.
	authCode, err := cryptox.GenerateAuthCode()
	if err != nil {
		log.Error("failed to generate auth code", slog.Any("error", err))
		return "", err
	}

	now := time.Now().UTC()
	inquiry := domain.Inquiry{
		ID:        idx.New().String(),
		Title:     title,
		Content:   content,
		Email:     email,
		Name:      name,
		Phone:     phone,
		AuthCode:  authCode,
		Status:    domain.InquiryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userEmailPayload, err := domain.EncodeJobPayload(domain.JobSubmitUserEmail, domain.SubmitUserEmailPayload{
		InquiryID: inquiry.ID,
		Email:     email,
		AuthCode:  authCode,
	})
	if err != nil {
		return "", err
	}
	adminNotifyPayload, err := domain.EncodeJobPayload(domain.JobSubmitAdminNotify, domain.SubmitAdminNotifyPayload{
		InquiryID: inquiry.ID,
	})
	if err != nil {
		return "", err
	}

	// 5. Insert + enqueue atomically. A crash can lose the whole
	// submission (the reporter sees an error and retries) but never an
	// inquiry whose notifications silently vanished.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Inquiries().CreateInquiry(ctx, inquiry); err != nil {
			return err
		}
		for _, job := range []domain.OutboxJob{
			newOutboxJob(domain.JobSubmitUserEmail, userEmailPayload, now),
			newOutboxJob(domain.JobSubmitAdminNotify, adminNotifyPayload, now),
		} {
			if err := tx.Outbox().EnqueueJob(ctx, job); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to persist submission", slog.Any("error", err))
		return "", err
	}

	log.Info("inquiry submitted",
		slog.String("inquiry_id", inquiry.ID),
		slog.String("key_id", req.KeyID),
	)

	return inquiry.ID, nil
}

func newOutboxJob(jobType string, payload []byte, now time.Time) domain.OutboxJob {
	return domain.OutboxJob{
		ID:            idx.New().String(),
		Type:          jobType,
		Payload:       payload,
		Status:        domain.JobStatusPending,
		Attempts:      0,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
