package service

import (
	"context"
	"time"

	applicantModels "assistflow/internal/applicant/models"
	documentModels "assistflow/internal/documents/models"
	verificationModels "assistflow/internal/verification/models"
	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/email"
	"assistflow/pkg/platform/audit"
)

// DashboardActivityLimit is how many activity entries the dashboard shows.
const DashboardActivityLimit = 50

// Stats are the reviewer dashboard counters.
type Stats struct {
	TotalUsers             int `json:"totalUsers"`
	PendingVerifications   int `json:"pendingVerifications"`
	ResendRequests         int `json:"resendRequests"`
	VerifiedUsers          int `json:"verifiedUsers"`
	DocumentsPendingReview int `json:"documentsPendingReview"`
	ApprovedApplicants     int `json:"approvedApplicants"`
}

// Dashboard is the reviewer's polling snapshot.
type Dashboard struct {
	Stats                Stats                                 `json:"stats"`
	PendingVerifications []applicantModels.PendingVerification `json:"pendingVerifications"`
	ResendRequests       []verificationModels.ResendRequest    `json:"resendRequests"`
	ReviewQueue          []documentModels.QueueEntry           `json:"reviewQueue"`
	Applicants           []*applicantModels.Applicant          `json:"applicants"`
	Activity             []audit.Entry                         `json:"activity"`
}

// Snapshot is the read-only audit export.
type Snapshot struct {
	ExportedAt  time.Time                    `json:"exportedAt"`
	Applicants  []*applicantModels.Applicant `json:"applicants"`
	Stats       Stats                        `json:"stats"`
	ActivityLog []audit.Entry                `json:"activityLog"`
}

// FileName is the download name for the export.
func (s *Snapshot) FileName() string {
	return "treasury-era-export-" + s.ExportedAt.Format("2006-01-02") + ".json"
}

// GetApplicant reads one applicant. Reads are allowed on non-active accounts.
func (s *Service) GetApplicant(ctx context.Context, addr string) (*applicantModels.Applicant, error) {
	addr = email.Normalize(addr)
	if err := requireSelf(ctx, addr); err != nil {
		return nil, err
	}
	return s.findApplicant(ctx, addr)
}

// ListDocuments returns the applicant's documents, oldest upload first.
// Rejected documents stay listed so they can be resubmitted.
func (s *Service) ListDocuments(ctx context.Context, addr string) ([]*documentModels.Document, error) {
	addr = email.Normalize(addr)
	if err := requireSelf(ctx, addr); err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByEmail(ctx, addr)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

// TakeApprovalNotification consumes the applicant's approval signal. It
// returns nil once the signal has been taken, so a replayed poll cannot
// observe the approval twice.
func (s *Service) TakeApprovalNotification(ctx context.Context, addr string) (*applicantModels.ApprovalNotification, error) {
	addr = email.Normalize(addr)
	if err := requireSelf(ctx, addr); err != nil {
		return nil, err
	}
	n, err := s.applicants.TakeApprovalNotification(ctx, addr)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read approval notification")
	}
	return n, nil
}

// ListApplicants returns every applicant. Reviewer only.
func (s *Service) ListApplicants(ctx context.Context) ([]*applicantModels.Applicant, error) {
	if err := requireReviewer(ctx); err != nil {
		return nil, err
	}
	applicants, err := s.applicants.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applicants")
	}
	return applicants, nil
}

// PendingVerifications lists applicants waiting for a first code. Reviewer only.
func (s *Service) PendingVerifications(ctx context.Context) ([]applicantModels.PendingVerification, error) {
	if err := requireReviewer(ctx); err != nil {
		return nil, err
	}
	pending, err := s.applicants.ListPending(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending verifications")
	}
	return pending, nil
}

// ResendRequests lists open resend requests. Reviewer only.
func (s *Service) ResendRequests(ctx context.Context) ([]verificationModels.ResendRequest, error) {
	if err := requireReviewer(ctx); err != nil {
		return nil, err
	}
	return s.handshake.ListResendRequests(ctx)
}

// ReviewQueue lists documents awaiting a decision, oldest upload first.
// Reviewer only.
func (s *Service) ReviewQueue(ctx context.Context) ([]documentModels.QueueEntry, error) {
	if err := requireReviewer(ctx); err != nil {
		return nil, err
	}
	var out []documentModels.QueueEntry
	for entry, err := range s.queue.ListPending(ctx) {
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list review queue")
		}
		out = append(out, entry)
	}
	if s.metrics != nil {
		s.metrics.ReviewQueueDepth.Set(float64(len(out)))
	}
	return out, nil
}

// Activity returns the newest activity entries. limit <= 0 returns all
// retained entries. Reviewer only.
func (s *Service) Activity(ctx context.Context, limit int) ([]audit.Entry, error) {
	if err := requireReviewer(ctx); err != nil {
		return nil, err
	}
	if s.auditPublisher == nil {
		return nil, nil
	}
	entries, err := s.auditPublisher.Recent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read activity log")
	}
	return entries, nil
}

// Dashboard gathers everything the reviewer polls for in one read.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	applicants, err := s.ListApplicants(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.PendingVerifications(ctx)
	if err != nil {
		return nil, err
	}
	resends, err := s.ResendRequests(ctx)
	if err != nil {
		return nil, err
	}
	queue, err := s.ReviewQueue(ctx)
	if err != nil {
		return nil, err
	}
	activity, err := s.Activity(ctx, DashboardActivityLimit)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Stats:                computeStats(applicants, len(pending), len(resends), len(queue)),
		PendingVerifications: pending,
		ResendRequests:       resends,
		ReviewQueue:          queue,
		Applicants:           applicants,
		Activity:             activity,
	}, nil
}

// Export snapshots every applicant, the dashboard counters and the retained
// activity log. Reviewer only.
func (s *Service) Export(ctx context.Context) (*Snapshot, error) {
	dash, err := s.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	activity, err := s.Activity(ctx, 0)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ExportedAt:  s.now(ctx),
		Applicants:  dash.Applicants,
		Stats:       dash.Stats,
		ActivityLog: activity,
	}, nil
}

func computeStats(applicants []*applicantModels.Applicant, pending, resends, queued int) Stats {
	st := Stats{
		TotalUsers:             len(applicants),
		PendingVerifications:   pending,
		ResendRequests:         resends,
		DocumentsPendingReview: queued,
	}
	for _, a := range applicants {
		if a.LifecycleState.IsVerified() {
			st.VerifiedUsers++
		}
		if a.IsApproved() {
			st.ApprovedApplicants++
		}
	}
	return st
}
