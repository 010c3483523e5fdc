package service

import (
	"context"
	"errors"
	"strconv"

	applicantModels "assistflow/internal/applicant/models"
	"assistflow/internal/effects"
	verificationModels "assistflow/internal/verification/models"
	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/email"
	"assistflow/pkg/platform/audit"
	"assistflow/pkg/platform/secrets"
	"assistflow/pkg/platform/sentinel"
)

// maxRegistrationNumberBumps bounds the search for a free ERA number when
// registrations land in the same millisecond.
const maxRegistrationNumberBumps = 100

// Register creates an applicant in PENDING_VERIFICATION and projects it into
// the reviewer's pending verification list.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (_ *applicantModels.Applicant, err error) {
	addr, err := email.Parse(cmd.Profile.Email)
	if err != nil {
		return nil, err
	}
	if err := secrets.CheckPolicy(cmd.Password); err != nil {
		return nil, err
	}
	ctx, span := s.start(ctx, "Register", addr)
	defer func() { finish(span, err) }()

	if _, err := s.applicants.FindByEmail(ctx, addr); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "an applicant with this email already exists")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing applicant")
	}

	now := s.now(ctx)
	number, err := s.reserveRegistrationNumber(ctx, addr, now.UnixMilli())
	if err != nil {
		return nil, err
	}

	profile := cmd.Profile
	profile.Email = addr
	a, err := applicantModels.NewApplicant(profile, number, now)
	if err != nil {
		s.release(ctx, number)
		return nil, err
	}
	if err := s.createCredential(ctx, addr, cmd.Password); err != nil {
		s.release(ctx, number)
		return nil, err
	}
	if err := s.applicants.Create(ctx, a); err != nil {
		s.release(ctx, number)
		s.dropCredential(ctx, addr)
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an applicant with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create applicant")
	}
	if err := s.applicants.SavePending(ctx, applicantModels.NewPendingVerification(a)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to queue applicant for verification")
	}

	if s.metrics != nil {
		s.metrics.Registrations.Inc()
	}
	s.emit(ctx, audit.ActionRegistered, addr, map[string]string{
		"registrationNumber": number,
		"fullName":           a.FullName(),
	})
	s.logger.InfoContext(ctx, "applicant registered",
		"email", addr,
		"registration_number", number,
	)
	return a, nil
}

func (s *Service) reserveRegistrationNumber(ctx context.Context, addr string, millis int64) (string, error) {
	for bump := range int64(maxRegistrationNumberBumps) {
		number := "ERA" + strconv.FormatInt(millis+bump, 10)
		err := s.applicants.ReserveRegistrationNumber(ctx, number, addr)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve registration number")
		}
		s.casConflict("registration_number")
	}
	return "", dErrors.New(dErrors.CodeInternal, "no registration number available")
}

func (s *Service) createCredential(ctx context.Context, addr, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	if err := s.applicants.CreateCredential(ctx, addr, hash); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "an applicant with this email already exists")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store credential")
	}
	return nil
}

func (s *Service) dropCredential(ctx context.Context, addr string) {
	if err := s.applicants.DeleteCredential(ctx, addr); err != nil {
		s.logger.WarnContext(ctx, "failed to delete credential", "error", err, "email", addr)
	}
}

// Authenticate returns the applicant whose password matches. Unknown emails
// and wrong passwords give the same CodeUnauthorized error.
func (s *Service) Authenticate(ctx context.Context, addr, password string) (_ *applicantModels.Applicant, err error) {
	addr, err = email.Parse(addr)
	if err != nil {
		return nil, err
	}
	ctx, span := s.start(ctx, "Authenticate", addr)
	defer func() { finish(span, err) }()

	denied := dErrors.New(dErrors.CodeUnauthorized, "email or password is incorrect")
	a, err := s.applicants.FindByEmail(ctx, addr)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load applicant")
	}
	var hash string
	if a != nil {
		hash, err = s.applicants.FindPasswordHash(ctx, addr)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
		}
	}
	if hash == "" {
		decoy, err := s.decoyHash()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
		}
		_ = secrets.Verify(password, decoy)
		return nil, denied
	}
	if err := secrets.Verify(password, hash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return nil, denied
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	return a, nil
}

func (s *Service) release(ctx context.Context, number string) {
	if err := s.applicants.ReleaseRegistrationNumber(ctx, number); err != nil {
		s.logger.WarnContext(ctx, "failed to release registration number", "error", err, "registration_number", number)
	}
}

// IssueCode binds a fresh verification code to the applicant, replacing any
// unconsumed one, answers an open resend request and delivers the code.
// Reviewer only.
func (s *Service) IssueCode(ctx context.Context, addr string) (_ *verificationModels.Challenge, err error) {
	addr = email.Normalize(addr)
	ctx, span := s.start(ctx, "IssueCode", addr)
	defer func() { finish(span, err) }()

	if err := requireReviewer(ctx); err != nil {
		return nil, err
	}
	a, err := s.findApplicant(ctx, addr)
	if err != nil {
		return nil, err
	}
	if err := a.CanIssueCode(); err != nil {
		return nil, err
	}

	issued, err := s.handshake.Issue(ctx, addr)
	if err != nil {
		return nil, err
	}
	challenge := issued.Challenge

	a, err = s.mutateApplicant(ctx, addr, func(a *applicantModels.Applicant) error {
		if err := a.CanIssueCode(); err != nil {
			return err
		}
		a.ApplyCodeIssued(challenge.IssuedAt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.applicants.DeletePending(ctx, addr); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear pending verification")
	}

	// Delivery is not retried; the reviewer can issue again.
	if err := s.deliverer.DeliverCode(ctx, effects.CodeDelivery{
		Email:       addr,
		PhoneNumber: a.PhoneNumber,
		Code:        challenge.Code,
		Message:     challenge.Message(),
		IssuedAt:    challenge.IssuedAt,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to deliver verification code", "error", err, "email", addr)
	}

	if s.metrics != nil {
		s.metrics.CodesIssued.Inc()
	}
	s.emit(ctx, audit.ActionCodeIssued, addr, map[string]string{
		"invalidated":    strconv.Itoa(issued.Invalidated),
		"resendConsumed": strconv.FormatBool(issued.ResendConsumed),
	})
	return challenge, nil
}

// SubmitCode consumes the applicant's challenge when code matches and moves
// the applicant to VERIFIED_PENDING_ELIGIBILITY.
func (s *Service) SubmitCode(ctx context.Context, addr, code string) (_ *applicantModels.Applicant, err error) {
	addr = email.Normalize(addr)
	ctx, span := s.start(ctx, "SubmitCode", addr)
	defer func() { finish(span, err) }()

	if err := requireSelf(ctx, addr); err != nil {
		return nil, err
	}
	a, err := s.findApplicant(ctx, addr)
	if err != nil {
		return nil, err
	}
	if err := a.RequireActive(); err != nil {
		s.codeSubmission("forbidden")
		return nil, err
	}

	if _, err := s.handshake.Consume(ctx, addr, code); err != nil {
		switch dErrors.CodeOf(err) {
		case dErrors.CodeInvalidCode:
			s.codeSubmission("invalid_code")
			s.emit(ctx, audit.ActionCodeRejected, addr, nil)
		case dErrors.CodeConflict:
			s.codeSubmission("already_used")
		default:
			s.codeSubmission("error")
		}
		return nil, err
	}

	// A challenge only exists once the applicant is awaiting entry, so this
	// transition fails only if the account was locked after the consume.
	// The reviewer recovers by reactivating and issuing a new code.
	a, err = s.mutateApplicant(ctx, addr, func(a *applicantModels.Applicant) error {
		if err := a.CanVerify(); err != nil {
			return err
		}
		a.ApplyVerified(s.now(ctx))
		return nil
	})
	if err != nil {
		s.codeSubmission("error")
		return nil, err
	}

	s.codeSubmission("accepted")
	s.emit(ctx, audit.ActionCodeVerified, addr, nil)
	return a, nil
}

func (s *Service) codeSubmission(result string) {
	if s.metrics != nil {
		s.metrics.CodeSubmissions.WithLabelValues(result).Inc()
	}
}

// RequestResend records that the applicant wants a fresh code. The 60 second
// cooldown is the applicant client's job.
func (s *Service) RequestResend(ctx context.Context, addr string) (_ *verificationModels.ResendRequest, err error) {
	addr = email.Normalize(addr)
	ctx, span := s.start(ctx, "RequestResend", addr)
	defer func() { finish(span, err) }()

	if err := requireSelf(ctx, addr); err != nil {
		return nil, err
	}
	a, err := s.findApplicant(ctx, addr)
	if err != nil {
		return nil, err
	}
	if err := a.RequireActive(); err != nil {
		return nil, err
	}
	if a.LifecycleState.IsVerified() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "applicant is already verified")
	}

	req, err := s.handshake.RequestResend(ctx, addr, a.FullName())
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.ActionResendRequested, addr, nil)
	return req, nil
}

// ConfirmEligibility signs off eligibility for a verified applicant.
func (s *Service) ConfirmEligibility(ctx context.Context, addr string) (_ *applicantModels.Applicant, err error) {
	addr = email.Normalize(addr)
	ctx, span := s.start(ctx, "ConfirmEligibility", addr)
	defer func() { finish(span, err) }()

	if err := requireSelf(ctx, addr); err != nil {
		return nil, err
	}
	a, err := s.mutateApplicant(ctx, addr, func(a *applicantModels.Applicant) error {
		if err := a.CanConfirmEligibility(); err != nil {
			return err
		}
		a.ApplyEligible(s.now(ctx))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.ActionEligibilityConfirmed, addr, nil)
	return a, nil
}

// CurrentChallenge returns the applicant's latest challenge. Reviewer only.
func (s *Service) CurrentChallenge(ctx context.Context, addr string) (*verificationModels.Challenge, error) {
	if err := requireReviewer(ctx); err != nil {
		return nil, err
	}
	return s.handshake.Current(ctx, email.Normalize(addr))
}
