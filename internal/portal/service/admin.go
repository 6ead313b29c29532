package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/openreport/portal/internal/portal/domain"
	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/pkg/idx"
	"github.com/openreport/portal/pkg/slogx"
)

var (
	// ErrInvalidStatus reports a status outside the inquiry lifecycle.
	ErrInvalidStatus = errors.New("invalid inquiry status")
	// ErrEmptyReply reports a reply without a title or content.
	ErrEmptyReply = errors.New("reply title and content are required")
)

// AdminService backs the case-handler surface: listing and reading
// inquiries in plaintext, moving them through the lifecycle, and posting
// replies. Authentication happens upstream in the JWT middleware; here the
// admin identity arrives as plain arguments.
type AdminService struct {
	Store store.Store
}

// InquiryDetail is one inquiry plus its replies, newest reply first.
type InquiryDetail struct {
	Inquiry domain.Inquiry
	Replies []domain.Reply
}

// ListInquiries returns every inquiry, newest first.
func (s *AdminService) ListInquiries(ctx context.Context) ([]domain.Inquiry, error) {
	return s.Store.Inquiries().ListInquiries(ctx)
}

// GetInquiry returns one inquiry with its replies in descending order.
func (s *AdminService) GetInquiry(ctx context.Context, id string) (InquiryDetail, error) {
	inquiry, err := s.Store.Inquiries().GetInquiryByID(ctx, id)
	if err != nil {
		return InquiryDetail{}, err
	}
	replies, err := s.Store.Replies().ListRepliesByInquiry(ctx, id, false)
	if err != nil {
		return InquiryDetail{}, err
	}
	return InquiryDetail{Inquiry: inquiry, Replies: replies}, nil
}

// UpdateStatus moves an inquiry to a new lifecycle state.
func (s *AdminService) UpdateStatus(ctx context.Context, id, status string) error {
	switch status {
	case domain.InquiryStatusPending, domain.InquiryStatusProcessing, domain.InquiryStatusCompleted:
	default:
		return ErrInvalidStatus
	}
	if err := s.Store.Inquiries().UpdateInquiryStatus(ctx, id, status); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("inquiry status updated",
		slog.String("inquiry_id", id),
		slog.String("status", status),
	)
	return nil
}

// CreateReply posts a reply and queues the reporter's notification email in
// the same transaction. The legacy single-reply columns track the latest
// reply, and a pending inquiry moves to processing on its first reply.
func (s *AdminService) CreateReply(ctx context.Context, inquiryID, adminID, title, content string) (domain.Reply, error) {
	log := slogx.FromContext(ctx)

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return domain.Reply{}, ErrEmptyReply
	}

	now := time.Now().UTC()
	var reply domain.Reply

	// The inquiry is read inside the transaction so the status observed
	// here is the one the bump below is based on.
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inquiry, err := tx.Inquiries().GetInquiryByID(ctx, inquiryID)
		if err != nil {
			return err
		}

		reply = domain.Reply{
			ID:        idx.New().String(),
			InquiryID: inquiryID,
			Title:     title,
			Content:   content,
			Status:    inquiry.Status,
			CreatedBy: adminID,
			CreatedAt: now,
		}
		if err := tx.Replies().CreateReply(ctx, reply); err != nil {
			return err
		}
		if err := tx.Inquiries().SetInquiryReply(ctx, inquiryID, title, content, now); err != nil {
			return err
		}
		if inquiry.Status == domain.InquiryStatusPending {
			if err := tx.Inquiries().UpdateInquiryStatus(ctx, inquiryID, domain.InquiryStatusProcessing); err != nil {
				return err
			}
		}

		payload, err := domain.EncodeJobPayload(domain.JobReplyUserEmail, domain.ReplyUserEmailPayload{
			InquiryID:    inquiryID,
			Email:        inquiry.Email,
			ReplyTitle:   title,
			ReplyContent: content,
		})
		if err != nil {
			return err
		}
		return tx.Outbox().EnqueueJob(ctx, newOutboxJob(domain.JobReplyUserEmail, payload, now))
	})
	if err != nil {
		log.Error("failed to persist reply", slog.String("inquiry_id", inquiryID), slog.Any("error", err))
		return domain.Reply{}, err
	}

	log.Info("reply posted",
		slog.String("inquiry_id", inquiryID),
		slog.String("reply_id", reply.ID),
		slog.String("admin_id", adminID),
	)
	return reply, nil
}

// RegisterAdmin records or refreshes an admin's roster entry. Called on
// every authenticated admin request so the fan-out roster tracks whoever
// the identity provider admits.
func (s *AdminService) RegisterAdmin(ctx context.Context, id, email string) error {
	now := time.Now().UTC()
	existing, err := s.Store.Admins().GetAdminByID(ctx, id)
	if err == nil {
		if existing.Email == email {
			return nil
		}
		existing.Email = email
		existing.UpdatedAt = now
		return s.Store.Admins().UpsertAdmin(ctx, existing)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return s.Store.Admins().UpsertAdmin(ctx, domain.Admin{
		ID:                   id,
		Email:                email,
		ReceiveNotifications: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	})
}

// ListAdmins returns the notification roster.
func (s *AdminService) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	return s.Store.Admins().ListAdmins(ctx)
}

// SetNotifications flips an admin's fan-out opt-in.
func (s *AdminService) SetNotifications(ctx context.Context, id string, receive bool) error {
	return s.Store.Admins().UpdateAdminNotifications(ctx, id, receive)
}
