package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/platform/httputil"
	request "assistflow/pkg/platform/middleware/request"
)

// Middleware limits requests per client IP and route class.
type Middleware struct {
	windows *Windows
	limit   int
	window  time.Duration
	logger  *slog.Logger
}

// New allows limit requests per window for each client and class. A
// non-positive limit disables limiting.
func New(windows *Windows, limit int, window time.Duration, logger *slog.Logger) *Middleware {
	return &Middleware{windows: windows, limit: limit, window: window, logger: logger}
}

// Limit returns middleware counting requests under class.
func (m *Middleware) Limit(class string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil || m.limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := request.ClientIPFromRequest(r)
			res := m.windows.Allow(class+":"+ip, m.limit, m.window)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retry := int(math.Ceil(res.RetryAfter(m.windows.now()).Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				m.logger.WarnContext(r.Context(), "rate limit exceeded",
					"class", class,
					"request_id", request.GetRequestID(r.Context()),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeTooManyRequests, "too many requests, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
