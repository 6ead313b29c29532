package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openreport/portal/internal/portal/service"
	"github.com/openreport/portal/pkg/httpx"
	"github.com/openreport/portal/pkg/portalsdk"
	"github.com/openreport/portal/pkg/slogx"
)

type SubmitHandler struct {
	SubmissionService *service.SubmissionService
}

// ServeHTTP godoc
//
//	@Summary		Inquiry Submission Endpoint
//	@Description	Accept an inquiry whose fields are encrypted under a previously issued one-time key.
//	@Description	The key is consumed by this call whether or not the submission succeeds past redemption.
//	@Tags			Inquiries
//	@Accept			json
//	@Produce		json
//	@Param			request	body		portalsdk.SubmitRequest	true	"Encrypted submission"
//	@Success		200		{object}	portalsdk.SubmitResponse	"id"
//	@Failure		400		{object}	portalsdk.ErrorResponse	"error"
//	@Failure		401		{object}	portalsdk.ErrorResponse	"error"
//	@Failure		500		{object}	portalsdk.ErrorResponse	"error"
//	@Router			/v1/inquiries [post].
func (h *SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req portalsdk.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := h.SubmissionService.Submit(ctx, service.SubmitRequest{
		KeyID:   req.KeyID,
		Title:   req.Title,
		Content: req.Content,
		Email:   req.Email,
		Name:    req.Name,
		Phone:   req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			httpx.WriteError(w, http.StatusBadRequest, "missing required fields")
		case errors.Is(err, service.ErrInvalidKey):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid or expired encryption key")
		default:
			log.Error("failed to store submission", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to store submission")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, portalsdk.SubmitResponse{ID: id})
}
