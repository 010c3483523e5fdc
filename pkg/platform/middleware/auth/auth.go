// Package auth authenticates applicants by bearer token.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/platform/httputil"
	request "assistflow/pkg/platform/middleware/request"
	"assistflow/pkg/requestcontext"
)

// TokenValidator validates an applicant bearer token and returns its email.
type TokenValidator interface {
	ValidateApplicantToken(tokenString string) (string, error)
}

// RequireApplicant rejects requests without a valid applicant token and marks
// the context as an applicant call.
func RequireApplicant(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			email, err := validator.ValidateApplicantToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithApplicant(ctx, email)))
		})
	}
}
