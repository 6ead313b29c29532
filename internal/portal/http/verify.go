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

type VerifyHandler struct {
	VerificationService *service.VerificationService
}

// ServeHTTP godoc
//
//	@Summary		Inquiry Verification Endpoint
//	@Description	Return the inquiry matching the encrypted (email, auth code) pair, re-encrypted under a fresh response key.
//	@Description	Wrong email and wrong code produce the same 401 so credentials cannot be probed independently.
//	@Tags			Inquiries
//	@Accept			json
//	@Produce		json
//	@Param			request	body		portalsdk.VerifyRequest	true	"Encrypted credentials"
//	@Success		200		{object}	portalsdk.VerifyResponse	"aesKey plus encrypted inquiry data"
//	@Failure		400		{object}	portalsdk.ErrorResponse	"error"
//	@Failure		401		{object}	portalsdk.ErrorResponse	"error"
//	@Failure		500		{object}	portalsdk.ErrorResponse	"error"
//	@Router			/v1/inquiries/verify [post].
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req portalsdk.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := h.VerificationService.Verify(ctx, service.VerifyRequest{
		KeyID:    req.KeyID,
		Email:    req.Email,
		AuthCode: req.AuthCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			httpx.WriteError(w, http.StatusBadRequest, "missing required fields")
		case errors.Is(err, service.ErrInvalidKey):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid or expired encryption key")
		case errors.Is(err, service.ErrInquiryNotFound):
			// Same body for wrong email and wrong code.
			httpx.WriteError(w, http.StatusUnauthorized, "no matching inquiry")
		default:
			log.Error("failed to verify inquiry", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "verification failed")
		}
		return
	}

	resp := portalsdk.VerifyResponse{
		AESKey: out.ResponseKey,
		Data: portalsdk.VerifyData{
			ID:           out.InquiryID,
			Status:       out.Status,
			Title:        out.Title,
			Content:      out.Content,
			Email:        out.Email,
			Name:         out.Name,
			Phone:        out.Phone,
			ReplyTitle:   out.ReplyTitle,
			ReplyContent: out.ReplyContent,
			RepliedAt:    out.RepliedAt,
			CreatedAt:    out.CreatedAt,
			UpdatedAt:    out.UpdatedAt,
		},
	}
	for _, reply := range out.Replies {
		resp.Data.Replies = append(resp.Data.Replies, portalsdk.ReplyPayload{
			ID:        reply.ID,
			Title:     reply.Title,
			Content:   reply.Content,
			Status:    reply.Status,
			CreatedAt: reply.CreatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
