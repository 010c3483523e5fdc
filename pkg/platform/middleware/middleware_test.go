package middleware_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"assistflow/pkg/platform/middleware/admin"
	"assistflow/pkg/platform/middleware/auth"
	request "assistflow/pkg/platform/middleware/request"
	"assistflow/pkg/requestcontext"
	"assistflow/pkg/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubValidator map[string]string

func (s stubValidator) ValidateApplicantToken(token string) (string, error) {
	if email, ok := s[token]; ok {
		return email, nil
	}
	return "", errors.New("bad token")
}

func captureContext(actor *requestcontext.ActorKind, actorID *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*actor = requestcontext.Actor(r.Context())
		*actorID = requestcontext.ActorID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAdminToken(t *testing.T) {
	var actor requestcontext.ActorKind
	var actorID string
	h := admin.RequireAdminToken("s3cret", discard)(captureContext(&actor, &actorID))

	t.Run("missing token is unauthorized", func(t *testing.T) {
		rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/admin/queue"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("valid token marks reviewer", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/admin/queue")
		req.Header.Set(admin.HeaderAdminToken, "s3cret")
		req.Header.Set(admin.HeaderReviewer, "rita")
		rr := testutil.DoRequest(h, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)
		assert.Equal(t, requestcontext.ActorReviewer, actor)
		assert.Equal(t, "rita", actorID)
	})

	t.Run("empty configured token rejects everything", func(t *testing.T) {
		open := admin.RequireAdminToken("", discard)(captureContext(&actor, &actorID))
		req := testutil.NewRequest(t, http.MethodGet, "/admin/queue")
		req.Header.Set(admin.HeaderAdminToken, "")
		rr := testutil.DoRequest(open, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestRequireApplicant(t *testing.T) {
	var actor requestcontext.ActorKind
	var actorID string
	h := auth.RequireApplicant(stubValidator{"good": "jane@example.com"}, discard)(captureContext(&actor, &actorID))

	t.Run("missing header", func(t *testing.T) {
		rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/me"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("invalid token", func(t *testing.T) {
		req := testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/me"), "bad")
		rr := testutil.DoRequest(h, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("valid token marks applicant", func(t *testing.T) {
		req := testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/me"), "good")
		rr := testutil.DoRequest(h, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)
		assert.Equal(t, requestcontext.ActorApplicant, actor)
		assert.Equal(t, "jane@example.com", actorID)
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := request.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = request.GetRequestID(r.Context())
	}))

	req := testutil.NewRequest(t, http.MethodGet, "/health")
	req.Header.Set(request.HeaderRequestID, "abc-123")
	rr := testutil.DoRequest(h, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rr.Header().Get(request.HeaderRequestID))

	rr = testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/health"))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(request.HeaderRequestID))
}

func TestRecovery(t *testing.T) {
	h := request.Recovery(discard)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/"))
	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
}

func TestClientIPFromRequest(t *testing.T) {
	req := testutil.NewRequest(t, http.MethodGet, "/")
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	assert.Equal(t, "10.0.0.1", request.ClientIPFromRequest(req))
}
