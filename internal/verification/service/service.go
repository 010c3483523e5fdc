// Package service implements the verification handshake: issuing one-time
// codes, validating them exactly once, and the resend signal channel.
package service

import (
	"context"
	"errors"
	"log/slog"

	"assistflow/internal/verification/models"
	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/platform/sentinel"
	"assistflow/pkg/requestcontext"
)

const maxCASRetries = 5

// Store is the persistence the handshake needs.
type Store interface {
	FindChallenge(ctx context.Context, email string) (*models.Challenge, error)
	SaveChallenge(ctx context.Context, c *models.Challenge, expectedVersion int64) error
	SaveResendRequest(ctx context.Context, r models.ResendRequest) error
	DeleteResendRequest(ctx context.Context, email string) (bool, error)
	ListResendRequests(ctx context.Context) ([]models.ResendRequest, error)
}

// Issued describes the outcome of Issue.
type Issued struct {
	Challenge *models.Challenge
	// Invalidated is the number of unconsumed challenges replaced: 0 or 1.
	Invalidated int
	// ResendConsumed reports whether an open resend request was answered.
	ResendConsumed bool
}

// Service is the verification handshake.
type Service struct {
	store    Store
	generate func() (string, error)
	logger   *slog.Logger
}

// Option configures Service.
type Option func(*Service)

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.generate = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates the handshake service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		generate: models.GenerateCode,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue binds a fresh code to email, replacing any previous challenge, and
// consumes the applicant's open resend request.
func (s *Service) Issue(ctx context.Context, email string) (*Issued, error) {
	code, err := s.generate()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification code")
	}
	now := requestcontext.Now(ctx)

	for range maxCASRetries {
		var expected int64
		invalidated := 0
		current, err := s.store.FindChallenge(ctx, email)
		switch {
		case err == nil:
			expected = current.Version
			if !current.IsConsumed() {
				invalidated = 1
			}
		case errors.Is(err, sentinel.ErrNotFound):
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification code")
		}

		challenge := &models.Challenge{Email: email, Code: code, IssuedAt: now}
		err = s.store.SaveChallenge(ctx, challenge, expected)
		if errors.Is(err, sentinel.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification code")
		}

		consumed, err := s.store.DeleteResendRequest(ctx, email)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume resend request")
		}
		return &Issued{Challenge: challenge, Invalidated: invalidated, ResendConsumed: consumed}, nil
	}
	return nil, dErrors.New(dErrors.CodeConflict, "verification code changed concurrently, retry")
}

// Consume validates code against the current challenge and marks it used.
//
// A mismatch returns CodeInvalidCode and leaves the challenge unconsumed.
// A consumed challenge returns CodeConflict. No challenge returns CodeInvalidState.
func (s *Service) Consume(ctx context.Context, email, code string) (*models.Challenge, error) {
	now := requestcontext.Now(ctx)

	for range maxCASRetries {
		current, err := s.store.FindChallenge(ctx, email)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidState, "no verification code has been issued")
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification code")
		}
		if current.IsConsumed() {
			return nil, dErrors.New(dErrors.CodeConflict, "verification code has already been used")
		}
		if !current.Matches(code) {
			return nil, dErrors.New(dErrors.CodeInvalidCode, "verification code does not match")
		}

		current.ConsumedAt = &now
		err = s.store.SaveChallenge(ctx, current, current.Version)
		if errors.Is(err, sentinel.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume verification code")
		}
		return current, nil
	}
	return nil, dErrors.New(dErrors.CodeConflict, "verification code changed concurrently, retry")
}

// Current returns the latest challenge for email.
func (s *Service) Current(ctx context.Context, email string) (*models.Challenge, error) {
	c, err := s.store.FindChallenge(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no verification code has been issued")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification code")
	}
	return c, nil
}

// RequestResend records the applicant's resend signal. The cooldown between
// requests is enforced by the applicant client, not here.
func (s *Service) RequestResend(ctx context.Context, email, fullName string) (*models.ResendRequest, error) {
	req := models.ResendRequest{
		Email:       email,
		FullName:    fullName,
		RequestedAt: requestcontext.Now(ctx),
		Message:     "Applicant requested a new verification code",
	}
	if err := s.store.SaveResendRequest(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record resend request")
	}
	return &req, nil
}

// ListResendRequests returns open resend requests, oldest first.
func (s *Service) ListResendRequests(ctx context.Context) ([]models.ResendRequest, error) {
	reqs, err := s.store.ListResendRequests(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list resend requests")
	}
	return reqs, nil
}
