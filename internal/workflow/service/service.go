// Package service is the applicant state machine. Every lifecycle and
// account transition, document decision and approval goes through Service.
//
// Applicant mutations are read-modify-CAS loops over applicant:<email>;
// document decisions CAS the document record; the approval rule is always
// re-derived from a fresh scan of the applicant's documents.
package service

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	applicantModels "assistflow/internal/applicant/models"
	documentModels "assistflow/internal/documents/models"
	"assistflow/internal/effects"
	"assistflow/internal/platform/metrics"
	verificationModels "assistflow/internal/verification/models"
	verificationService "assistflow/internal/verification/service"
	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/platform/audit"
	"assistflow/pkg/platform/secrets"
	"assistflow/pkg/platform/sentinel"
	"assistflow/pkg/requestcontext"
)

const maxCASRetries = 5

// DefaultApprovalAmount is granted on entering APPROVED_FOR_ASSISTANCE.
var DefaultApprovalAmount = decimal.NewFromInt(1000)

// ApplicantStore persists applicants and their projections.
type ApplicantStore interface {
	Create(ctx context.Context, a *applicantModels.Applicant) error
	ReserveRegistrationNumber(ctx context.Context, number, email string) error
	ReleaseRegistrationNumber(ctx context.Context, number string) error
	CreateCredential(ctx context.Context, email, passwordHash string) error
	FindPasswordHash(ctx context.Context, email string) (string, error)
	DeleteCredential(ctx context.Context, email string) error
	FindByEmail(ctx context.Context, email string) (*applicantModels.Applicant, error)
	Update(ctx context.Context, a *applicantModels.Applicant) error
	List(ctx context.Context) ([]*applicantModels.Applicant, error)
	SavePending(ctx context.Context, p applicantModels.PendingVerification) error
	DeletePending(ctx context.Context, email string) error
	ListPending(ctx context.Context) ([]applicantModels.PendingVerification, error)
	PutApprovalNotification(ctx context.Context, n applicantModels.ApprovalNotification) error
	TakeApprovalNotification(ctx context.Context, email string) (*applicantModels.ApprovalNotification, error)
	SaveBankAccount(ctx context.Context, b *applicantModels.BankAccount) error
	FindBankAccount(ctx context.Context, email string) (*applicantModels.BankAccount, error)
}

// DocumentStore persists documents.
type DocumentStore interface {
	Create(ctx context.Context, d *documentModels.Document) error
	FindByID(ctx context.Context, id string) (*documentModels.Document, error)
	Find(ctx context.Context, email, id string) (*documentModels.Document, error)
	Update(ctx context.Context, d *documentModels.Document) error
	Withdraw(ctx context.Context, d *documentModels.Document) error
	ListByEmail(ctx context.Context, email string) ([]*documentModels.Document, error)
	ListAll(ctx context.Context) ([]*documentModels.Document, error)
}

// ReviewQueue is the reviewer-visible set of pending documents.
type ReviewQueue interface {
	Enqueue(ctx context.Context, entry documentModels.QueueEntry) error
	Dequeue(ctx context.Context, documentID string) (bool, error)
	ListPending(ctx context.Context) iter.Seq2[documentModels.QueueEntry, error]
	Len(ctx context.Context) (int, error)
}

// Handshake issues and consumes verification codes.
type Handshake interface {
	Issue(ctx context.Context, email string) (*verificationService.Issued, error)
	Consume(ctx context.Context, email, code string) (*verificationModels.Challenge, error)
	Current(ctx context.Context, email string) (*verificationModels.Challenge, error)
	RequestResend(ctx context.Context, email, fullName string) (*verificationModels.ResendRequest, error)
	ListResendRequests(ctx context.Context) ([]verificationModels.ResendRequest, error)
}

// AuditPublisher appends to and reads the activity log.
type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

// Service is the applicant state machine.
type Service struct {
	applicants ApplicantStore
	documents  DocumentStore
	queue      ReviewQueue
	handshake  Handshake

	deliverer      effects.CodeDeliverer
	disbursement   effects.DisbursementTrigger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer

	approvalAmount decimal.Decimal
	newID          func() string
	hasher         secrets.Hasher
	decoyHash      func() (string, error)
}

// Option configures Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

func WithCodeDeliverer(d effects.CodeDeliverer) Option {
	return func(s *Service) {
		s.deliverer = d
	}
}

func WithDisbursementTrigger(t effects.DisbursementTrigger) Option {
	return func(s *Service) {
		s.disbursement = t
	}
}

// WithApprovalAmount overrides DefaultApprovalAmount.
func WithApprovalAmount(amount decimal.Decimal) Option {
	return func(s *Service) {
		s.approvalAmount = amount
	}
}

// WithIDGenerator replaces the document id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// WithPasswordHasher sets the bcrypt cost used for new passwords.
func WithPasswordHasher(h secrets.Hasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New wires the state machine. Side effects default to logging adapters.
func New(applicants ApplicantStore, documents DocumentStore, queue ReviewQueue, handshake Handshake, opts ...Option) (*Service, error) {
	if applicants == nil {
		return nil, errors.New("applicant store is required")
	}
	if documents == nil {
		return nil, errors.New("document store is required")
	}
	if queue == nil {
		return nil, errors.New("review queue is required")
	}
	if handshake == nil {
		return nil, errors.New("verification handshake is required")
	}
	s := &Service{
		applicants:     applicants,
		documents:      documents,
		queue:          queue,
		handshake:      handshake,
		logger:         slog.Default(),
		tracer:         otel.Tracer("assistflow/workflow"),
		approvalAmount: DefaultApprovalAmount,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.deliverer == nil {
		s.deliverer = effects.NewLogDeliverer(s.logger)
	}
	if s.disbursement == nil {
		s.disbursement = effects.NewLogTrigger(s.logger)
	}
	if !s.approvalAmount.IsPositive() {
		return nil, errors.New("approval amount must be positive")
	}
	// compared against when the email is unknown so both paths pay for bcrypt
	s.decoyHash = sync.OnceValues(func() (string, error) {
		return s.hasher.Hash(uuid.NewString())
	})
	return s, nil
}

// start opens a span for op. Pair with finish.
func (s *Service) start(ctx context.Context, op, email string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "workflow."+op, trace.WithAttributes(
		attribute.String("applicant.email", email),
		attribute.String("actor", string(requestcontext.Actor(ctx))),
	))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

// requireReviewer rejects applicant callers on reviewer-only transitions.
func requireReviewer(ctx context.Context) error {
	if requestcontext.Actor(ctx) == requestcontext.ActorApplicant {
		return dErrors.New(dErrors.CodeForbidden, "reviewer access required")
	}
	return nil
}

// requireSelf stops an applicant from acting on another applicant's record.
func requireSelf(ctx context.Context, email string) error {
	if requestcontext.Actor(ctx) == requestcontext.ActorApplicant && requestcontext.ApplicantEmail(ctx) != email {
		return dErrors.New(dErrors.CodeForbidden, "applicants may only act on their own record")
	}
	return nil
}

func (s *Service) findApplicant(ctx context.Context, email string) (*applicantModels.Applicant, error) {
	a, err := s.applicants.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "applicant not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load applicant")
	}
	return a, nil
}

// mutateApplicant applies fn to a fresh read of the applicant and writes it
// back with compare-and-swap, re-reading on conflict. fn must be safe to run
// more than once and returns an error to abort without writing.
func (s *Service) mutateApplicant(ctx context.Context, email string, fn func(a *applicantModels.Applicant) error) (*applicantModels.Applicant, error) {
	for range maxCASRetries {
		a, err := s.findApplicant(ctx, email)
		if err != nil {
			return nil, err
		}
		if err := fn(a); err != nil {
			return nil, err
		}
		err = s.applicants.Update(ctx, a)
		if errors.Is(err, sentinel.ErrConflict) {
			s.casConflict("applicant")
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update applicant")
		}
		return a, nil
	}
	return nil, dErrors.New(dErrors.CodeConflict, "applicant changed concurrently, retry")
}

func (s *Service) casConflict(record string) {
	if s.metrics != nil {
		s.metrics.CASConflicts.WithLabelValues(record).Inc()
	}
}

// emit appends to the activity log. Failures are logged, not returned: the
// transition has already been committed.
func (s *Service) emit(ctx context.Context, action audit.Action, email string, details map[string]string) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Entry{
		Action:       action,
		SubjectEmail: email,
		Details:      details,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to append activity log entry",
			"error", err,
			"action", action,
			"email", email,
		)
	}
}

func (s *Service) now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx).UTC()
}
