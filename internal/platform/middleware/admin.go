package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "landing/pkg/domain-errors"
	"landing/pkg/platform/httputil"
	"landing/pkg/requestcontext"
)

// AdminValidator verifies administrative bearer tokens.
type AdminValidator interface {
	Validate(token string) (subject string, err error)
}

// RequireAdmin rejects requests without a valid admin bearer token.
func RequireAdmin(validator AdminValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" || validator == nil {
				logger.WarnContext(ctx, "admin access denied - missing token",
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			subject, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "admin access denied - invalid token",
					"request_id", GetRequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired admin token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithAdminSubject(ctx, subject)))
		})
	}
}
