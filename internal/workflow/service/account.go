package service

import (
	"context"
	"errors"

	applicantModels "assistflow/internal/applicant/models"
	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/email"
	"assistflow/pkg/platform/audit"
	"assistflow/pkg/platform/sentinel"
)

var accountActionAudit = map[applicantModels.AccountAction]audit.Action{
	applicantModels.ActionLock:       audit.ActionAccountLocked,
	applicantModels.ActionSuspend:    audit.ActionAccountSuspended,
	applicantModels.ActionBlock:      audit.ActionAccountBlocked,
	applicantModels.ActionReactivate: audit.ActionAccountReactivated,
}

// ApplyAccountAction sets the applicant's account status. Lock, suspend and
// block need a reason; reactivate needs a non-active account. Reviewer only.
func (s *Service) ApplyAccountAction(ctx context.Context, addr string, action applicantModels.AccountAction, reason string) (_ *applicantModels.Applicant, err error) {
	addr = email.Normalize(addr)
	ctx, span := s.start(ctx, "ApplyAccountAction", addr)
	defer func() { finish(span, err) }()

	if err := requireReviewer(ctx); err != nil {
		return nil, err
	}
	var previous applicantModels.AccountStatus
	a, err := s.mutateApplicant(ctx, addr, func(a *applicantModels.Applicant) error {
		if err := a.CanApplyAccountAction(action, reason); err != nil {
			return err
		}
		previous = a.AccountStatus
		a.ApplyAccountAction(action, reason, s.now(ctx))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AccountActions.WithLabelValues(string(action)).Inc()
	}
	details := map[string]string{
		"from": string(previous),
		"to":   string(a.AccountStatus),
	}
	if a.StatusReason != "" {
		details["reason"] = a.StatusReason
	}
	s.emit(ctx, accountActionAudit[action], addr, details)
	s.logger.InfoContext(ctx, "account status changed",
		"email", addr,
		"action", action,
		"status", a.AccountStatus,
	)
	return a, nil
}

// SaveBankAccount stores where the approved amount is paid. Only approved,
// active applicants may save one.
func (s *Service) SaveBankAccount(ctx context.Context, addr string, cmd BankAccountCommand) (_ *applicantModels.BankAccount, err error) {
	addr = email.Normalize(addr)
	ctx, span := s.start(ctx, "SaveBankAccount", addr)
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
	if !a.IsApproved() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "bank details can only be added after approval")
	}

	account, err := applicantModels.NewBankAccount(addr, cmd.AccountHolderName, cmd.BankName,
		cmd.RoutingNumber, cmd.AccountNumber, cmd.AccountType, s.now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.applicants.SaveBankAccount(ctx, account); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save bank account")
	}
	s.emit(ctx, audit.ActionBankAccountSaved, addr, map[string]string{
		"bankName":      account.BankName,
		"accountNumber": account.MaskedAccountNumber(),
	})
	return account, nil
}

// BankAccount returns the saved bank account, if any.
func (s *Service) BankAccount(ctx context.Context, addr string) (*applicantModels.BankAccount, error) {
	addr = email.Normalize(addr)
	if err := requireSelf(ctx, addr); err != nil {
		return nil, err
	}
	account, err := s.applicants.FindBankAccount(ctx, addr)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no bank account saved")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load bank account")
	}
	return account, nil
}
