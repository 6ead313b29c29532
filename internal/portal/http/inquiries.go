package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/openreport/portal/internal/portal/domain"
	"github.com/openreport/portal/internal/portal/service"
	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/pkg/httpx"
	"github.com/openreport/portal/pkg/slogx"
)

// AdminInquiry is the plaintext admin view of an inquiry. The auth code is
// never exposed, not even to admins.
type AdminInquiry struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content,omitempty"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone,omitempty"`
	Status    string     `json:"status"`
	RepliedAt *time.Time `json:"replied_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AdminReply is one reply in the admin detail view.
type AdminReply struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminInquiryDetail is the full admin view: inquiry plus replies, newest
// reply first.
type AdminInquiryDetail struct {
	AdminInquiry
	Replies []AdminReply `json:"replies"`
}

func toAdminInquiry(inq domain.Inquiry, withContent bool) AdminInquiry {
	out := AdminInquiry{
		ID:        inq.ID,
		Title:     inq.Title,
		Email:     inq.Email,
		Name:      inq.Name,
		Phone:     inq.Phone,
		Status:    inq.Status,
		RepliedAt: inq.RepliedAt,
		CreatedAt: inq.CreatedAt,
		UpdatedAt: inq.UpdatedAt,
	}
	if withContent {
		out.Content = inq.Content
	}
	return out
}

type InquiriesHandler struct {
	AdminService *service.AdminService
}

// registerAdmin keeps the notification roster in sync with whoever the
// identity provider lets through. Failures are logged, not fatal.
func (h *InquiriesHandler) registerAdmin(r *http.Request) {
	ctx := r.Context()
	adminID := httpx.AdminIDFromContext(ctx)
	if adminID == "" {
		return
	}
	if err := h.AdminService.RegisterAdmin(ctx, adminID, httpx.AdminEmailFromContext(ctx)); err != nil {
		slogx.FromContext(ctx).Warn("failed to register admin", "admin_id", adminID, "err", err)
	}
}

// HandleList godoc
//
//	@Summary		Inquiry List Endpoint
//	@Description	List all inquiries in plaintext, newest first. Admin only.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{array}		AdminInquiry	"inquiries"
//	@Failure		401	{object}	portalsdk.ErrorResponse	"error"
//	@Failure		500	{object}	portalsdk.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/v1/admin/inquiries [get].
func (h *InquiriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	h.registerAdmin(r)

	inquiries, err := h.AdminService.ListInquiries(ctx)
	if err != nil {
		log.Error("failed to list inquiries", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list inquiries")
		return
	}

	out := make([]AdminInquiry, 0, len(inquiries))
	for _, inq := range inquiries {
		out = append(out, toAdminInquiry(inq, false))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Inquiry Detail Endpoint
//	@Description	Fetch one inquiry with its full content and reply history. Admin only.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string	true	"Inquiry ID"
//	@Success		200	{object}	AdminInquiryDetail	"inquiry with replies"
//	@Failure		401	{object}	portalsdk.ErrorResponse	"error"
//	@Failure		404	{object}	portalsdk.ErrorResponse	"error"
//	@Failure		500	{object}	portalsdk.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/v1/admin/inquiries/{id} [get].
func (h *InquiriesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	h.registerAdmin(r)

	detail, err := h.AdminService.GetInquiry(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "inquiry not found")
			return
		}
		log.Error("failed to get inquiry", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to get inquiry")
		return
	}

	out := AdminInquiryDetail{
		AdminInquiry: toAdminInquiry(detail.Inquiry, true),
		Replies:      make([]AdminReply, 0, len(detail.Replies)),
	}
	for _, reply := range detail.Replies {
		out.Replies = append(out.Replies, AdminReply{
			ID:        reply.ID,
			Title:     reply.Title,
			Content:   reply.Content,
			CreatedBy: reply.CreatedBy,
			CreatedAt: reply.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// StatusUpdateRequest changes an inquiry's lifecycle state.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus godoc
//
//	@Summary		Inquiry Status Endpoint
//	@Description	Move an inquiry between pending, processing and completed. Admin only.
//	@Tags			Admin
//	@Accept			json
//	@Param			id		path	string				true	"Inquiry ID"
//	@Param			request	body	StatusUpdateRequest	true	"New status"
//	@Success		204		"status updated"
//	@Failure		400		{object}	portalsdk.ErrorResponse	"error"
//	@Failure		401		{object}	portalsdk.ErrorResponse	"error"
//	@Failure		404		{object}	portalsdk.ErrorResponse	"error"
//	@Failure		500		{object}	portalsdk.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/v1/admin/inquiries/{id}/status [put].
func (h *InquiriesHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	h.registerAdmin(r)

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.AdminService.UpdateStatus(ctx, r.PathValue("id"), req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			httpx.WriteError(w, http.StatusBadRequest, "invalid status")
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "inquiry not found")
		default:
			log.Error("failed to update status", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to update status")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
