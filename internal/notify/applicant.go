package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	applicantModels "assistflow/internal/applicant/models"
	verificationModels "assistflow/internal/verification/models"
	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/email"
	"assistflow/pkg/requestcontext"
)

// Watcher names used for scheduling and metrics.
const (
	WatcherApplicantCode     = "applicant_code"
	WatcherApplicantApproval = "applicant_approval"
	WatcherReviewer          = "reviewer"
)

// DefaultResendCooldown is the minimum gap between two resend requests from
// the same applicant.
const DefaultResendCooldown = 60 * time.Second

// ApplicantReader is the applicant-side view of the workflow.
type ApplicantReader interface {
	GetApplicant(ctx context.Context, addr string) (*applicantModels.Applicant, error)
	TakeApprovalNotification(ctx context.Context, addr string) (*applicantModels.ApprovalNotification, error)
}

// ApplicantHandler reacts to what the applicant's watcher observes.
type ApplicantHandler interface {
	CodeIssued(ctx context.Context, a *applicantModels.Applicant) error
	Approved(ctx context.Context, n applicantModels.ApprovalNotification) error
}

// ApplicantWatcher polls on behalf of one applicant.
type ApplicantWatcher struct {
	email   string
	reader  ApplicantReader
	handler ApplicantHandler
	logger  *slog.Logger

	mu           sync.Mutex
	lastCodeSent time.Time
	approved     bool
}

// NewApplicantWatcher watches addr.
func NewApplicantWatcher(addr string, reader ApplicantReader, handler ApplicantHandler, logger *slog.Logger) *ApplicantWatcher {
	return &ApplicantWatcher{
		email:   email.Normalize(addr),
		reader:  reader,
		handler: handler,
		logger:  logger,
	}
}

func (w *ApplicantWatcher) actorContext(ctx context.Context) context.Context {
	return requestcontext.WithApplicant(ctx, w.email)
}

// PollCode reports a newly issued code. A re-issued code has a later
// CodeSentAt and is reported again; re-reading the same code is not.
func (w *ApplicantWatcher) PollCode(ctx context.Context) (bool, error) {
	ctx = w.actorContext(ctx)
	a, err := w.reader.GetApplicant(ctx, w.email)
	if err != nil {
		return false, err
	}
	if a.CodeSentAt == nil || a.LifecycleState != applicantModels.StateAwaitingCodeEntry {
		return false, nil
	}

	w.mu.Lock()
	if !a.CodeSentAt.After(w.lastCodeSent) {
		w.mu.Unlock()
		return false, nil
	}
	w.lastCodeSent = *a.CodeSentAt
	w.mu.Unlock()

	if err := w.handler.CodeIssued(ctx, a); err != nil {
		return true, err
	}
	return true, nil
}

// PollApproval consumes the approval signal. The signal is deleted by the
// read, so a replayed poll finds nothing; the handler still runs at most once
// per watcher.
func (w *ApplicantWatcher) PollApproval(ctx context.Context) (bool, error) {
	ctx = w.actorContext(ctx)
	n, err := w.reader.TakeApprovalNotification(ctx, w.email)
	if err != nil {
		return false, err
	}
	if n == nil {
		return false, nil
	}

	w.mu.Lock()
	already := w.approved
	w.approved = true
	w.mu.Unlock()
	if already {
		w.logger.DebugContext(ctx, "approval observed again", "email", w.email)
		return false, nil
	}
	return true, w.handler.Approved(ctx, *n)
}

// Schedule registers both polls on s.
func (w *ApplicantWatcher) Schedule(s *Scheduler, codeInterval, approvalInterval time.Duration) error {
	if err := s.Every(codeInterval, WatcherApplicantCode, w.PollCode); err != nil {
		return err
	}
	return s.Every(approvalInterval, WatcherApplicantApproval, w.PollApproval)
}

// Resender files resend requests.
type Resender interface {
	RequestResend(ctx context.Context, addr string) (*verificationModels.ResendRequest, error)
}

// ApplicantClient is the applicant-side caller for actions with a
// client-enforced cooldown.
type ApplicantClient struct {
	email    string
	resender Resender
	cooldown time.Duration
	now      func() time.Time

	mu         sync.Mutex
	lastResend time.Time
}

// ClientOption configures an ApplicantClient.
type ClientOption func(*ApplicantClient)

// WithCooldown overrides DefaultResendCooldown.
func WithCooldown(d time.Duration) ClientOption {
	return func(c *ApplicantClient) { c.cooldown = d }
}

// WithClientClock sets the clock used for the cooldown.
func WithClientClock(now func() time.Time) ClientOption {
	return func(c *ApplicantClient) { c.now = now }
}

func NewApplicantClient(addr string, resender Resender, opts ...ClientOption) *ApplicantClient {
	c := &ApplicantClient{
		email:    email.Normalize(addr),
		resender: resender,
		cooldown: DefaultResendCooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestResend files a resend request unless one was filed within the
// cooldown. A failed request does not start the cooldown.
func (c *ApplicantClient) RequestResend(ctx context.Context) (*verificationModels.ResendRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.lastResend.IsZero() {
		if wait := c.cooldown - now.Sub(c.lastResend); wait > 0 {
			return nil, dErrors.New(dErrors.CodeTooManyRequests,
				"please wait "+wait.Round(time.Second).String()+" before requesting another code")
		}
	}
	ctx = requestcontext.WithTime(requestcontext.WithApplicant(ctx, c.email), now)
	rr, err := c.resender.RequestResend(ctx, c.email)
	if err != nil {
		return nil, err
	}
	c.lastResend = now
	return rr, nil
}

// LogApplicantHandler logs observations. Useful for headless watchers.
type LogApplicantHandler struct {
	Logger *slog.Logger
}

func (h LogApplicantHandler) CodeIssued(ctx context.Context, a *applicantModels.Applicant) error {
	h.Logger.InfoContext(ctx, "verification code issued", "email", a.Email, "code_sent_at", a.CodeSentAt)
	return nil
}

func (h LogApplicantHandler) Approved(ctx context.Context, n applicantModels.ApprovalNotification) error {
	h.Logger.InfoContext(ctx, "approved for assistance", "email", n.Email, "amount", n.Amount.StringFixed(2))
	return nil
}
