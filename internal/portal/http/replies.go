package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/openreport/portal/internal/portal/service"
	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/pkg/httpx"
	"github.com/openreport/portal/pkg/slogx"
)

type RepliesHandler struct {
	AdminService *service.AdminService
}

// ReplyCreateRequest posts a new reply to an inquiry.
type ReplyCreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ReplyCreateResponse acknowledges a stored reply.
type ReplyCreateResponse struct {
	ID        string    `json:"id"`
	InquiryID string    `json:"inquiry_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// HandleCreate godoc
//
//	@Summary		Reply Creation Endpoint
//	@Description	Post a reply to an inquiry. Queues a notification email to the reporter; the reply body
//	@Description	itself travels only through the encrypted verification flow. Admin only.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Inquiry ID"
//	@Param			request	body		ReplyCreateRequest	true	"Reply"
//	@Success		201		{object}	ReplyCreateResponse	"stored reply"
//	@Failure		400		{object}	portalsdk.ErrorResponse	"error"
//	@Failure		401		{object}	portalsdk.ErrorResponse	"error"
//	@Failure		404		{object}	portalsdk.ErrorResponse	"error"
//	@Failure		500		{object}	portalsdk.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/v1/admin/inquiries/{id}/replies [post].
func (h *RepliesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	adminID := httpx.AdminIDFromContext(ctx)
	if err := h.AdminService.RegisterAdmin(ctx, adminID, httpx.AdminEmailFromContext(ctx)); err != nil {
		log.Warn("failed to register admin", "admin_id", adminID, "err", err)
	}

	var req ReplyCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reply, err := h.AdminService.CreateReply(ctx, r.PathValue("id"), adminID, req.Title, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyReply):
			httpx.WriteError(w, http.StatusBadRequest, "title and content are required")
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "inquiry not found")
		default:
			log.Error("failed to create reply", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to create reply")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, ReplyCreateResponse{
		ID:        reply.ID,
		InquiryID: reply.InquiryID,
		Title:     reply.Title,
		Content:   reply.Content,
		CreatedBy: reply.CreatedBy,
		CreatedAt: reply.CreatedAt,
	})
}
