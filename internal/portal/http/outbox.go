package http

import (
	"net/http"

	"github.com/openreport/portal/internal/portal/service"
	"github.com/openreport/portal/pkg/cryptox"
	"github.com/openreport/portal/pkg/httpx"
	"github.com/openreport/portal/pkg/slogx"
)

type OutboxHandler struct {
	OutboxService *service.OutboxService
	CronSecret    string
	BatchSize     int
}

// ServeHTTP godoc
//
//	@Summary		Outbox Processing Endpoint
//	@Description	Drain one batch of pending notification jobs. Intended for an external cron scheduler;
//	@Description	guarded by a shared secret in the Authorization header.
//	@Tags			Internal
//	@Produce		json
//	@Param			Authorization	header		string	true	"Bearer {cron secret}"
//	@Success		200				{object}	service.BatchResult	"processed, ok, failed, results"
//	@Failure		401				{object}	portalsdk.ErrorResponse	"error"
//	@Failure		500				{object}	portalsdk.ErrorResponse	"error"
//	@Router			/v1/internal/process-outbox [post].
func (h *OutboxHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if h.CronSecret == "" || !cryptox.SecureCompare(bearerToken(r), h.CronSecret) {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	res, err := h.OutboxService.RunBatch(ctx, h.BatchSize)
	if err != nil {
		log.Error("outbox batch failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "outbox processing failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, res)
}

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authz) > len(prefix) && authz[:len(prefix)] == prefix {
		return authz[len(prefix):]
	}
	return ""
}
