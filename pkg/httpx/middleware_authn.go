package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openreport/portal/pkg/slogx"
)

type ctxKey string

const (
	ctxKeyAdminID    ctxKey = "admin_id"
	ctxKeyAdminEmail ctxKey = "admin_email"
)

// AdminClaims are the claims the external identity provider puts in admin
// tokens. This service never mints these tokens, it only verifies them
// against the shared HS256 secret agreed with the provider.
type AdminClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuthMiddleware verifies the bearer JWT on admin routes and injects
// the admin identity into the request context.
func AdminAuthMiddleware(secret []byte) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims := &AdminClaims{}
			token, err := jwt.ParseWithClaims(raw, claims,
				func(t *jwt.Token) (any, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, jwt.ErrSignatureInvalid
					}
					return secret, nil
				},
				jwt.WithValidMethods([]string{"HS256"}),
				jwt.WithExpirationRequired(),
			)
			if err != nil || !token.Valid {
				log.Warn("admin jwt verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			if claims.Role != "admin" {
				w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdminID, claims.Subject)
			ctx = context.WithValue(ctx, ctxKeyAdminEmail, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminIDFromContext returns the authenticated admin's subject, or "".
func AdminIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyAdminID).(string); ok {
		return v
	}
	return ""
}

// AdminEmailFromContext returns the authenticated admin's email, or "".
func AdminEmailFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyAdminEmail).(string); ok {
		return v
	}
	return ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
