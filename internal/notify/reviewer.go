package notify

import (
	"context"
	"log/slog"
	"sync"

	applicantModels "assistflow/internal/applicant/models"
	documentModels "assistflow/internal/documents/models"
	verificationModels "assistflow/internal/verification/models"
	"assistflow/pkg/requestcontext"
)

// ReviewerPollerID names the poller in the reviewer context.
const ReviewerPollerID = "reviewer-poller"

// ReviewerReader is the reviewer-side view of the workflow.
type ReviewerReader interface {
	PendingVerifications(ctx context.Context) ([]applicantModels.PendingVerification, error)
	ResendRequests(ctx context.Context) ([]verificationModels.ResendRequest, error)
	ReviewQueue(ctx context.Context) ([]documentModels.QueueEntry, error)
}

// ReviewerHandler receives items that appeared since the previous poll.
type ReviewerHandler interface {
	Notify(ctx context.Context, u Update) error
}

// Update holds what a reviewer poll found that the previous poll did not.
type Update struct {
	PendingVerifications []applicantModels.PendingVerification
	ResendRequests       []verificationModels.ResendRequest
	Documents            []documentModels.QueueEntry
}

// Empty reports whether nothing new was found.
func (u Update) Empty() bool {
	return len(u.PendingVerifications) == 0 && len(u.ResendRequests) == 0 && len(u.Documents) == 0
}

// ReviewerWatcher diffs successive snapshots of the reviewer's work lists.
// Items that leave a list and later return are reported again.
type ReviewerWatcher struct {
	reader  ReviewerReader
	handler ReviewerHandler
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	resends map[string]struct{}
	docs    map[string]struct{}
}

// NewReviewerWatcher creates a watcher. handler may be nil when the caller
// only uses Poll.
func NewReviewerWatcher(reader ReviewerReader, handler ReviewerHandler, logger *slog.Logger) *ReviewerWatcher {
	return &ReviewerWatcher{
		reader:  reader,
		handler: handler,
		logger:  logger,
		pending: map[string]struct{}{},
		resends: map[string]struct{}{},
		docs:    map[string]struct{}{},
	}
}

// Poll re-reads the work lists and returns only new items. A failed read
// leaves the previous snapshot in place.
func (w *ReviewerWatcher) Poll(ctx context.Context) (Update, error) {
	ctx = requestcontext.WithReviewer(ctx, ReviewerPollerID)
	pending, err := w.reader.PendingVerifications(ctx)
	if err != nil {
		return Update{}, err
	}
	resends, err := w.reader.ResendRequests(ctx)
	if err != nil {
		return Update{}, err
	}
	queue, err := w.reader.ReviewQueue(ctx)
	if err != nil {
		return Update{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	var u Update
	u.PendingVerifications, w.pending = diff(pending, w.pending, func(p applicantModels.PendingVerification) string {
		return p.Email + "|" + p.RegisteredAt.String()
	})
	u.ResendRequests, w.resends = diff(resends, w.resends, func(r verificationModels.ResendRequest) string {
		return r.Email + "|" + r.RequestedAt.String()
	})
	u.Documents, w.docs = diff(queue, w.docs, func(e documentModels.QueueEntry) string {
		return e.DocumentID
	})
	return u, nil
}

// Tick polls and hands a non-empty update to the handler.
func (w *ReviewerWatcher) Tick(ctx context.Context) (bool, error) {
	u, err := w.Poll(ctx)
	if err != nil {
		return false, err
	}
	if u.Empty() {
		return false, nil
	}
	if w.handler == nil {
		return true, nil
	}
	return true, w.handler.Notify(ctx, u)
}

func diff[T any](current []T, seen map[string]struct{}, key func(T) string) ([]T, map[string]struct{}) {
	next := make(map[string]struct{}, len(current))
	var fresh []T
	for _, item := range current {
		k := key(item)
		next[k] = struct{}{}
		if _, ok := seen[k]; !ok {
			fresh = append(fresh, item)
		}
	}
	return fresh, next
}

// LogReviewerHandler logs each new item.
type LogReviewerHandler struct {
	Logger *slog.Logger
}

func (h LogReviewerHandler) Notify(ctx context.Context, u Update) error {
	for _, p := range u.PendingVerifications {
		h.Logger.InfoContext(ctx, "applicant awaiting verification code", "email", p.Email, "registration_number", p.RegistrationNumber)
	}
	for _, r := range u.ResendRequests {
		h.Logger.InfoContext(ctx, "code resend requested", "email", r.Email)
	}
	for _, d := range u.Documents {
		h.Logger.InfoContext(ctx, "document awaiting review", "document_id", d.DocumentID, "email", d.Email, "type", d.Type)
	}
	return nil
}
