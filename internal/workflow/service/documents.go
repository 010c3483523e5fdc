package service

import (
	"context"
	"errors"

	applicantModels "assistflow/internal/applicant/models"
	documentModels "assistflow/internal/documents/models"
	"assistflow/internal/effects"
	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/email"
	"assistflow/pkg/platform/audit"
	"assistflow/pkg/platform/sentinel"
	"assistflow/pkg/requestcontext"
)

var errAlreadyApproved = errors.New("applicant already approved")

// SubmitDocument stores a pending document, queues it for review and
// advances the applicant to DOCUMENTS_SUBMITTED on the first upload or
// DOCUMENTS_UNDER_REVIEW afterwards. A resubmission always gets a new id;
// the rejected original is left untouched.
func (s *Service) SubmitDocument(ctx context.Context, addr string, cmd SubmitDocumentCommand) (_ *documentModels.Document, _ applicantModels.LifecycleState, err error) {
	addr = email.Normalize(addr)
	ctx, span := s.start(ctx, "SubmitDocument", addr)
	defer func() { finish(span, err) }()

	if err := requireSelf(ctx, addr); err != nil {
		return nil, "", err
	}
	a, err := s.findApplicant(ctx, addr)
	if err != nil {
		return nil, "", err
	}
	if err := a.CanSubmitDocument(); err != nil {
		return nil, "", err
	}
	if ref := cmd.Upload.ResubmissionOf; ref != "" {
		if err := s.checkResubmission(ctx, addr, ref); err != nil {
			return nil, "", err
		}
	}

	doc, err := documentModels.NewDocument(s.newID(), addr, cmd.Upload, s.now(ctx))
	if err != nil {
		return nil, "", err
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "document id already in use")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
	}
	if err := s.queue.Enqueue(ctx, documentModels.NewQueueEntry(doc)); err != nil {
		s.discardSubmission(ctx, doc)
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to queue document for review")
	}

	a, err = s.mutateApplicant(ctx, addr, func(a *applicantModels.Applicant) error {
		if err := a.CanSubmitDocument(); err != nil {
			return err
		}
		a.ApplyDocumentSubmitted(doc.UploadDate)
		return nil
	})
	if err != nil {
		s.discardSubmission(ctx, doc)
		return nil, "", err
	}

	if s.metrics != nil {
		s.metrics.DocumentsSubmitted.Inc()
	}
	s.observeQueueDepth(ctx)
	details := map[string]string{
		"documentId": doc.ID,
		"category":   string(doc.Category),
		"type":       doc.Type,
	}
	if doc.ResubmissionOf != nil {
		details["resubmissionOf"] = *doc.ResubmissionOf
	}
	s.emit(ctx, audit.ActionDocumentSubmitted, addr, details)
	return doc, a.LifecycleState, nil
}

// discardSubmission removes a document whose submission did not advance the
// applicant, so no reviewer can decide a document the lifecycle never saw.
func (s *Service) discardSubmission(ctx context.Context, doc *documentModels.Document) {
	ctx = context.WithoutCancel(ctx)
	if _, err := s.queue.Dequeue(ctx, doc.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to dequeue abandoned document", "error", err, "document_id", doc.ID)
	}
	if err := s.documents.Withdraw(ctx, doc); err != nil {
		s.logger.ErrorContext(ctx, "failed to remove abandoned document", "error", err, "document_id", doc.ID)
	}
}

func (s *Service) checkResubmission(ctx context.Context, addr, id string) error {
	prev, err := s.documents.Find(ctx, addr, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "document being resubmitted not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	if prev.Status != documentModels.StatusRejected {
		return dErrors.New(dErrors.CodeInvalidState, "only rejected documents can be resubmitted")
	}
	return nil
}

// DecideDocument records a reviewer verdict. The decision is a
// compare-and-swap from pending_review, so of two concurrent decisions on the
// same document the second gets CodeConflict. Approval re-runs the approval
// rule for the document's owner. Reviewer only.
//
// Deciding an already decided document still returns CodeConflict, but first
// finishes the follow-up of the recorded decision: the queue entry is removed
// and, for an approval, the rule is re-run. A reviewer retrying after a failed
// call therefore completes an approval the first call could not write.
func (s *Service) DecideDocument(ctx context.Context, cmd DecideDocumentCommand) (_ *documentModels.Document, err error) {
	ctx, span := s.start(ctx, "DecideDocument", "")
	defer func() { finish(span, err) }()

	if err := requireReviewer(ctx); err != nil {
		return nil, err
	}

	doc, err := s.decide(ctx, cmd)
	if err != nil {
		if doc != nil {
			if _, settleErr := s.settleDecision(ctx, doc); settleErr != nil {
				return nil, settleErr
			}
		}
		return nil, err
	}

	action := audit.ActionDocumentApproved
	details := map[string]string{"documentId": doc.ID, "category": string(doc.Category)}
	if doc.Status == documentModels.StatusRejected {
		action = audit.ActionDocumentRejected
		details["reason"] = *doc.RejectionReason
	}
	if s.metrics != nil {
		s.metrics.DocumentDecisions.WithLabelValues(string(cmd.Decision)).Inc()
	}
	s.emit(ctx, action, doc.Email, details)

	if _, err := s.settleDecision(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// settleDecision removes a decided document from the queue and, when it was
// approved, re-runs the approval rule. Both steps are idempotent.
func (s *Service) settleDecision(ctx context.Context, doc *documentModels.Document) (bool, error) {
	if _, err := s.queue.Dequeue(ctx, doc.ID); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove document from review queue")
	}
	s.observeQueueDepth(ctx)
	if doc.Status != documentModels.StatusApproved {
		return false, nil
	}
	return s.evaluateApproval(ctx, doc.Email)
}

// ReconcileApprovals re-runs the approval rule for every applicant whose
// documents are under review and approves those whose approved documents
// already satisfy it. It reports how many applicants it approved. Reviewer or
// system only.
func (s *Service) ReconcileApprovals(ctx context.Context) (_ int, err error) {
	ctx, span := s.start(ctx, "ReconcileApprovals", "")
	defer func() { finish(span, err) }()

	if err := requireReviewer(ctx); err != nil {
		return 0, err
	}
	applicants, err := s.applicants.List(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applicants")
	}
	approved := 0
	var errs []error
	for _, a := range applicants {
		if a.CanApprove() != nil {
			continue
		}
		ok, err := s.evaluateApproval(ctx, a.Email)
		if err != nil {
			s.logger.ErrorContext(ctx, "approval reconciliation failed", "error", err, "email", a.Email)
			errs = append(errs, err)
			continue
		}
		if ok {
			approved++
		}
	}
	return approved, errors.Join(errs...)
}

func (s *Service) decide(ctx context.Context, cmd DecideDocumentCommand) (*documentModels.Document, error) {
	reviewer := requestcontext.ActorID(ctx)
	for range maxCASRetries {
		doc, err := s.documents.FindByID(ctx, cmd.DocumentID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
		}
		if doc.Status == documentModels.StatusWithdrawn {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		if err := doc.CanDecide(cmd.Decision, cmd.Reason); err != nil {
			if !doc.IsPending() {
				return doc, err
			}
			return nil, err
		}
		doc.ApplyDecision(cmd.Decision, cmd.Reason, reviewer, s.now(ctx))

		err = s.documents.Update(ctx, doc)
		if errors.Is(err, sentinel.ErrConflict) {
			s.casConflict("document")
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record decision")
		}
		return doc, nil
	}
	return nil, dErrors.New(dErrors.CodeConflict, "document changed concurrently, retry")
}

// evaluateApproval approves the applicant when the approved documents meet
// the rule and reports whether this call did so. Only the caller whose write
// moves the applicant into APPROVED_FOR_ASSISTANCE runs the side effects.
func (s *Service) evaluateApproval(ctx context.Context, addr string) (bool, error) {
	docs, err := s.documents.ListByEmail(ctx, addr)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	if !documentModels.MeetsApprovalRule(docs) {
		return false, nil
	}

	now := s.now(ctx)
	a, err := s.mutateApplicant(ctx, addr, func(a *applicantModels.Applicant) error {
		if a.IsApproved() {
			return errAlreadyApproved
		}
		if err := a.CanApprove(); err != nil {
			return err
		}
		a.ApplyApproval(s.approvalAmount, now)
		return nil
	})
	if errors.Is(err, errAlreadyApproved) {
		return false, nil
	}
	if dErrors.HasCode(err, dErrors.CodeInvalidState) {
		s.logger.WarnContext(ctx, "approval rule met outside document review", "email", addr, "error", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.applicants.PutApprovalNotification(ctx, applicantModels.ApprovalNotification{
		Email:      addr,
		Amount:     s.approvalAmount,
		ApprovedAt: now,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to write approval notification", "error", err, "email", addr)
	}
	if err := s.disbursement.TriggerDisbursement(ctx, effects.Disbursement{
		Email:              addr,
		RegistrationNumber: a.RegistrationNumber,
		Amount:             s.approvalAmount,
		ApprovedAt:         now,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to trigger disbursement", "error", err, "email", addr)
	}

	if s.metrics != nil {
		s.metrics.Approvals.Inc()
	}
	s.emit(ctx, audit.ActionApplicantApproved, addr, map[string]string{
		"amount": s.approvalAmount.StringFixed(2),
	})
	s.logger.InfoContext(ctx, "applicant approved for assistance", "email", addr)
	return true, nil
}

// RemoveDocument withdraws a document still awaiting review. Decided
// documents return CodeConflict, including one decided while the withdrawal
// was in flight.
func (s *Service) RemoveDocument(ctx context.Context, addr, documentID string) (err error) {
	addr = email.Normalize(addr)
	ctx, span := s.start(ctx, "RemoveDocument", addr)
	defer func() { finish(span, err) }()

	if err := requireSelf(ctx, addr); err != nil {
		return err
	}
	a, err := s.findApplicant(ctx, addr)
	if err != nil {
		return err
	}
	if err := a.RequireActive(); err != nil {
		return err
	}

	doc, err := s.documents.Find(ctx, addr, documentID)
	if errors.Is(err, sentinel.ErrNotFound) || (err == nil && doc.Status == documentModels.StatusWithdrawn) {
		return dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	if err := doc.CanWithdraw(); err != nil {
		return err
	}
	if err := s.documents.Withdraw(ctx, doc); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "document was reviewed while being removed")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove document")
	}
	if _, err := s.queue.Dequeue(ctx, documentID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove document from review queue")
	}

	s.observeQueueDepth(ctx)
	s.emit(ctx, audit.ActionDocumentRemoved, addr, map[string]string{"documentId": documentID})
	return nil
}

func (s *Service) observeQueueDepth(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	n, err := s.queue.Len(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read review queue depth", "error", err)
		return
	}
	s.metrics.ReviewQueueDepth.Set(float64(n))
}
