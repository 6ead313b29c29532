package http

import (
	"net/http"

	"github.com/openreport/portal/internal/portal/service"
	"github.com/openreport/portal/pkg/httpx"
	"github.com/openreport/portal/pkg/portalsdk"
	"github.com/openreport/portal/pkg/slogx"
)

type KeysHandler struct {
	KeyService *service.KeyService
}

// ServeHTTP godoc
//
//	@Summary		One-Time Key Endpoint
//	@Description	Issue a fresh single-use AES-256 key for encrypting one submission or verification request.
//	@Description	The key expires after five minutes and is invalidated on first use.
//	@Tags			Keys
//	@Produce		json
//	@Success		200	{object}	portalsdk.KeyResponse	"keyId, key, expiresIn"
//	@Failure		500	{object}	portalsdk.ErrorResponse	"error"
//	@Router			/v1/keys [get].
func (h *KeysHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	issued, err := h.KeyService.IssueKey(ctx)
	if err != nil {
		log.Error("failed to issue key", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to issue key")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, portalsdk.KeyResponse{
		KeyID:     issued.KeyID,
		Key:       issued.Secret,
		ExpiresIn: issued.ExpiresIn,
	})
}
