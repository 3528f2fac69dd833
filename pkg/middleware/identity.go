package middleware

import (
	"net/http"

	"journey-booking/pkg/utils"

	"go.uber.org/zap"
)

// Header names set by the upstream gateway after authentication.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

// Identity extracts the authenticated caller from gateway headers and puts
// it on the request context. The identifier is trusted as given; validating
// it is the gateway's job.
func Identity(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(HeaderUserID)
			if userID == "" {
				logger.Warn("Request without user identity",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
				)
				utils.ResponseUnauthorized(w, "Missing "+HeaderUserID+" header")
				return
			}

			role := r.Header.Get(HeaderUserRole)

			ctx := utils.SetUserContext(r.Context(), userID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin requires the admin role on top of Identity.
func Admin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := utils.GetRoleFromContext(r.Context())
			if !ok || role != utils.RoleAdmin {
				logger.Warn("Admin route denied",
					zap.String("path", r.URL.Path),
					zap.String("role", role),
				)
				utils.ResponseForbidden(w, "Admin privilege required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
