package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openreport/portal/internal/portal/domain"
	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/pkg/cryptox"
	"github.com/openreport/portal/pkg/slogx"
)

// ErrInquiryNotFound is the single failure a verification caller ever sees
// for a bad credential pair. Wrong email and wrong code are deliberately
// indistinguishable.
var ErrInquiryNotFound = errors.New("no matching inquiry")

// VerifyRequest is an inbound encrypted verification. Both credentials
// arrive encrypted under the one-time key named by KeyID.
type VerifyRequest struct {
	KeyID    string
	Email    cryptox.EncryptedField
	AuthCode cryptox.EncryptedField
}

// VerifiedInquiry is the reporter-facing view of an inquiry, every field
// encrypted under a fresh response key. The reporter's identity fields are
// echoed back so the client can render the original submission.
type VerifiedInquiry struct {
	ResponseKey string // hex, decrypts every field below
	InquiryID   string
	Status      string

	Title   cryptox.EncryptedField
	Content cryptox.EncryptedField
	Email   cryptox.EncryptedField
	Name    cryptox.EncryptedField
	Phone   *cryptox.EncryptedField

	// Legacy single-reply fields, present when populated.
	ReplyTitle   *cryptox.EncryptedField
	ReplyContent *cryptox.EncryptedField
	RepliedAt    *time.Time

	Replies []VerifiedReply

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VerifiedReply is one admin reply, encrypted for the reporter. Status rides
// along in plaintext, like the timestamp.
type VerifiedReply struct {
	ID        string
	Title     cryptox.EncryptedField
	Content   cryptox.EncryptedField
	Status    string
	CreatedAt time.Time
}

// VerificationService lets a reporter retrieve their inquiry with the
// (email, auth code) pair. The request decrypts under a redeemed one-time
// key; the response re-encrypts under a second, freshly minted key returned
// alongside it, so plaintext never crosses the wire in either direction.
type VerificationService struct {
	Store store.Store
	Keys  *KeyService
}

// Verify redeems the key, decrypts the credentials, and returns the
// matching inquiry encrypted under a fresh response key.
func (s *VerificationService) Verify(ctx context.Context, req VerifyRequest) (VerifiedInquiry, error) {
	log := slogx.FromContext(ctx)

	if req.KeyID == "" || req.Email.Encrypted == "" || req.AuthCode.Encrypted == "" {
		return VerifiedInquiry{}, ErrMissingField
	}

	secret, err := s.Keys.RedeemKey(ctx, req.KeyID)
	if err != nil {
		return VerifiedInquiry{}, err
	}

	cipher, err := cryptox.NewSessionCipher(secret)
	if err != nil {
		log.Error("stored key secret is unusable", slog.String("key_id", req.KeyID), slog.Any("error", err))
		return VerifiedInquiry{}, ErrInvalidKey
	}

	email, err := cipher.Decrypt(req.Email)
	if err != nil {
		return VerifiedInquiry{}, ErrInvalidKey
	}
	authCode, err := cipher.Decrypt(req.AuthCode)
	if err != nil {
		return VerifiedInquiry{}, ErrInvalidKey
	}

	// Codes are stored uppercase; comparison is case-insensitive by
	// normalizing the caller's input the same way.
	inquiry, err := s.Store.Inquiries().GetInquiryByCredentials(ctx, email, cryptox.NormalizeAuthCode(authCode))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("verification rejected", slog.String("key_id", req.KeyID))
			return VerifiedInquiry{}, ErrInquiryNotFound
		}
		log.Error("failed to look up inquiry", slog.Any("error", err))
		return VerifiedInquiry{}, err
	}

	replies, err := s.Store.Replies().ListRepliesByInquiry(ctx, inquiry.ID, true)
	if err != nil {
		log.Error("failed to list replies", slog.String("inquiry_id", inquiry.ID), slog.Any("error", err))
		return VerifiedInquiry{}, err
	}

	// The response travels under its own single-use key. The request key is
	// already spent and is never reused for output.
	responseKey, err := cryptox.GenerateSessionKey()
	if err != nil {
		log.Error("failed to generate response key", slog.Any("error", err))
		return VerifiedInquiry{}, err
	}
	out, err := encryptInquiry(responseKey, inquiry, replies)
	if err != nil {
		log.Error("failed to encrypt response", slog.String("inquiry_id", inquiry.ID), slog.Any("error", err))
		return VerifiedInquiry{}, err
	}

	log.Info("inquiry verified", slog.String("inquiry_id", inquiry.ID))
	return out, nil
}

func encryptInquiry(responseKey string, inquiry domain.Inquiry, replies []domain.Reply) (VerifiedInquiry, error) {
	cipher, err := cryptox.NewSessionCipher(responseKey)
	if err != nil {
		return VerifiedInquiry{}, err
	}

	out := VerifiedInquiry{
		ResponseKey: responseKey,
		InquiryID:   inquiry.ID,
		Status:      inquiry.Status,
		RepliedAt:   inquiry.RepliedAt,
		CreatedAt:   inquiry.CreatedAt,
		UpdatedAt:   inquiry.UpdatedAt,
	}

	if out.Title, err = cipher.Encrypt(inquiry.Title); err != nil {
		return VerifiedInquiry{}, err
	}
	if out.Content, err = cipher.Encrypt(inquiry.Content); err != nil {
		return VerifiedInquiry{}, err
	}
	if out.Email, err = cipher.Encrypt(inquiry.Email); err != nil {
		return VerifiedInquiry{}, err
	}
	if out.Name, err = cipher.Encrypt(inquiry.Name); err != nil {
		return VerifiedInquiry{}, err
	}
	if inquiry.Phone != "" {
		f, err := cipher.Encrypt(inquiry.Phone)
		if err != nil {
			return VerifiedInquiry{}, err
		}
		out.Phone = &f
	}
	if inquiry.ReplyTitle != "" {
		f, err := cipher.Encrypt(inquiry.ReplyTitle)
		if err != nil {
			return VerifiedInquiry{}, err
		}
		out.ReplyTitle = &f
	}
	if inquiry.ReplyContent != "" {
		f, err := cipher.Encrypt(inquiry.ReplyContent)
		if err != nil {
			return VerifiedInquiry{}, err
		}
		out.ReplyContent = &f
	}

	for _, r := range replies {
		vr := VerifiedReply{ID: r.ID, Status: r.Status, CreatedAt: r.CreatedAt}
		if vr.Title, err = cipher.Encrypt(r.Title); err != nil {
			return VerifiedInquiry{}, err
		}
		if vr.Content, err = cipher.Encrypt(r.Content); err != nil {
			return VerifiedInquiry{}, err
		}
		out.Replies = append(out.Replies, vr)
	}

	return out, nil
}
