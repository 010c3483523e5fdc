package testutil

import (
	"context"
	"net/http"
	"time"

	"assistflow/pkg/requestcontext"
)

// WithBearer sets an applicant bearer token on req.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// ApplicantContext is a service-level context for applicant email at now.
func ApplicantContext(email string, now time.Time) context.Context {
	return requestcontext.WithTime(requestcontext.WithApplicant(context.Background(), email), now)
}

// ReviewerContext is a service-level context for reviewerID at now.
func ReviewerContext(reviewerID string, now time.Time) context.Context {
	return requestcontext.WithTime(requestcontext.WithReviewer(context.Background(), reviewerID), now)
}
