// Package admin guards reviewer routes with a shared token.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/platform/httputil"
	request "assistflow/pkg/platform/middleware/request"
	"assistflow/pkg/requestcontext"
)

const (
	HeaderAdminToken = "X-Admin-Token"
	HeaderReviewer   = "X-Reviewer"
)

// RequireAdminToken admits requests carrying the reviewer token and marks the
// context as a reviewer call. X-Reviewer optionally names the reviewer for the
// activity log.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderAdminToken)
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			reviewer := strings.TrimSpace(r.Header.Get(HeaderReviewer))
			if reviewer == "" {
				reviewer = "admin"
			}
			ctx := requestcontext.WithReviewer(r.Context(), reviewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
