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

type AdminsHandler struct {
	AdminService *service.AdminService
}

// AdminEntry is one notification roster entry.
type AdminEntry struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	ReceiveNotifications bool      `json:"receive_notifications"`
	CreatedAt            time.Time `json:"created_at"`
}

// NotificationSettingsRequest flips the caller's fan-out opt-in.
type NotificationSettingsRequest struct {
	ReceiveNotifications bool `json:"receive_notifications"`
}

// HandleList godoc
//
//	@Summary		Admin Roster Endpoint
//	@Description	List the admins known to the notification fan-out. Admin only.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{array}		AdminEntry	"admins"
//	@Failure		401	{object}	portalsdk.ErrorResponse	"error"
//	@Failure		500	{object}	portalsdk.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/v1/admin/settings/admins [get].
func (h *AdminsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	adminID := httpx.AdminIDFromContext(ctx)
	if err := h.AdminService.RegisterAdmin(ctx, adminID, httpx.AdminEmailFromContext(ctx)); err != nil {
		log.Warn("failed to register admin", "admin_id", adminID, "err", err)
	}

	admins, err := h.AdminService.ListAdmins(ctx)
	if err != nil {
		log.Error("failed to list admins", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list admins")
		return
	}

	out := make([]AdminEntry, 0, len(admins))
	for _, a := range admins {
		out = append(out, AdminEntry{
			ID:                   a.ID,
			Email:                a.Email,
			ReceiveNotifications: a.ReceiveNotifications,
			CreatedAt:            a.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdateNotifications godoc
//
//	@Summary		Notification Settings Endpoint
//	@Description	Opt the calling admin in or out of new-inquiry notifications.
//	@Tags			Admin
//	@Accept			json
//	@Param			request	body	NotificationSettingsRequest	true	"Settings"
//	@Success		204		"settings updated"
//	@Failure		400		{object}	portalsdk.ErrorResponse	"error"
//	@Failure		401		{object}	portalsdk.ErrorResponse	"error"
//	@Failure		500		{object}	portalsdk.ErrorResponse	"error"
//	@Security		BearerAuth
//	@Router			/v1/admin/settings/notifications [put].
func (h *AdminsHandler) HandleUpdateNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	adminID := httpx.AdminIDFromContext(ctx)
	if err := h.AdminService.RegisterAdmin(ctx, adminID, httpx.AdminEmailFromContext(ctx)); err != nil {
		log.Warn("failed to register admin", "admin_id", adminID, "err", err)
	}

	var req NotificationSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.AdminService.SetNotifications(ctx, adminID, req.ReceiveNotifications); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "admin not found")
			return
		}
		log.Error("failed to update notification settings", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
