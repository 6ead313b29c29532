package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/openreport/portal/internal/portal/service"
	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/pkg/httpx"
	"github.com/openreport/portal/pkg/slogx"

	_ "github.com/openreport/portal/api/portal" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	adminJWTSecret []byte
	cronSecret     string
	batchSize      int
	buildVersion   string
	startTime      time.Time
	logger         *slog.Logger

	store               store.Store
	KeyService          *service.KeyService
	SubmissionService   *service.SubmissionService
	VerificationService *service.VerificationService
	AdminService        *service.AdminService
	OutboxService       *service.OutboxService
}

func NewRouter(
	adminJWTSecret []byte,
	cronSecret string,
	batchSize int,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:            http.NewServeMux(),
		adminJWTSecret: adminJWTSecret,
		cronSecret:     cronSecret,
		batchSize:      batchSize,
		buildVersion:   buildVersion,
		startTime:      time.Now(),
		store:          st,
		logger:         logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerPublic()
	r.registerAdmin()
	r.registerInternal()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Inquiry Portal API
//	@version		0.1.0
//	@description	Anonymous inquiry intake with per-request field encryption. Clients fetch a
//	@description	single-use AES-256 key, encrypt every sensitive field under it, and submit;
//	@description	the key is consumed on first use. Reporters retrieve their inquiry with an
//	@description	emailed auth code through the same encrypted channel.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin JWT from the identity provider. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerPublic() {
	// GET /keys - moderate rate limit (one key per submission or lookup)
	keysHandler := &KeysHandler{KeyService: r.KeyService}
	r.Mux.Handle("GET /v1/keys",
		httpx.Chain(keysHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /inquiries - moderate rate limit by IP
	submitHandler := &SubmitHandler{SubmissionService: r.SubmissionService}
	r.Mux.Handle("POST /v1/inquiries",
		httpx.Chain(submitHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /inquiries/verify - strict rate limit by IP. The auth code space
	// is only 36^6, so verification attempts must stay expensive.
	verifyHandler := &VerifyHandler{VerificationService: r.VerificationService}
	r.Mux.Handle("POST /v1/inquiries/verify",
		httpx.Chain(verifyHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	authn := httpx.AdminAuthMiddleware(r.adminJWTSecret)

	inquiries := &InquiriesHandler{AdminService: r.AdminService}
	replies := &RepliesHandler{AdminService: r.AdminService}
	admins := &AdminsHandler{AdminService: r.AdminService}

	r.Mux.Handle("GET /v1/admin/inquiries",
		httpx.Chain(http.HandlerFunc(inquiries.HandleList),
			authn,
			httpx.RateLimitByAdmin(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/admin/inquiries/{id}",
		httpx.Chain(http.HandlerFunc(inquiries.HandleGet),
			authn,
			httpx.RateLimitByAdmin(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/admin/inquiries/{id}/status",
		httpx.Chain(http.HandlerFunc(inquiries.HandleUpdateStatus),
			authn,
			httpx.RateLimitByAdmin(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/admin/inquiries/{id}/replies",
		httpx.Chain(http.HandlerFunc(replies.HandleCreate),
			authn,
			httpx.RateLimitByAdmin(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/admin/settings/admins",
		httpx.Chain(http.HandlerFunc(admins.HandleList),
			authn,
			httpx.RateLimitByAdmin(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/admin/settings/notifications",
		httpx.Chain(http.HandlerFunc(admins.HandleUpdateNotifications),
			authn,
			httpx.RateLimitByAdmin(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerInternal() {
	// POST /internal/process-outbox - shared-secret guard, moderate limit.
	// Complements the in-process ticker for deployments that prefer an
	// external scheduler.
	outboxHandler := &OutboxHandler{
		OutboxService: r.OutboxService,
		CronSecret:    r.cronSecret,
		BatchSize:     r.batchSize,
	}
	r.Mux.Handle("POST /v1/internal/process-outbox",
		httpx.Chain(outboxHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
