package audit

import (
	"context"
	"time"
)

// EventCategory classifies activity by its primary purpose so sinks can
// route or retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers decisions with programme significance:
	// document decisions, approvals, account actions.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers verification failures and access changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine workflow progress.
	CategoryOperations EventCategory = "operations"
)

// Action names a workflow mutation.
type Action string

const (
	// Registration and verification
	ActionRegistered           Action = "applicant_registered"
	ActionCodeIssued           Action = "verification_code_issued"
	ActionCodeVerified         Action = "verification_code_verified"
	ActionCodeRejected         Action = "verification_code_rejected"
	ActionResendRequested      Action = "verification_resend_requested"
	ActionEligibilityConfirmed Action = "eligibility_confirmed"

	// Documents
	ActionDocumentSubmitted Action = "document_submitted"
	ActionDocumentApproved  Action = "document_approved"
	ActionDocumentRejected  Action = "document_rejected"
	ActionDocumentRemoved   Action = "document_removed"

	// Outcome
	ActionApplicantApproved Action = "applicant_approved"
	ActionBankAccountSaved  Action = "bank_account_saved"

	// Account actions
	ActionAccountLocked      Action = "account_locked"
	ActionAccountSuspended   Action = "account_suspended"
	ActionAccountBlocked     Action = "account_blocked"
	ActionAccountReactivated Action = "account_reactivated"
)

var actionCategories = map[Action]EventCategory{
	ActionDocumentApproved:   CategoryCompliance,
	ActionDocumentRejected:   CategoryCompliance,
	ActionApplicantApproved:  CategoryCompliance,
	ActionAccountLocked:      CategoryCompliance,
	ActionAccountSuspended:   CategoryCompliance,
	ActionAccountBlocked:     CategoryCompliance,
	ActionAccountReactivated: CategoryCompliance,

	ActionCodeRejected:     CategorySecurity,
	ActionCodeIssued:       CategorySecurity,
	ActionBankAccountSaved: CategorySecurity,
}

// Category returns the EventCategory for this action.
// Unknown actions default to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Entry is one activity log record. Entries are append-only.
type Entry struct {
	ID           string            `json:"id"`
	Timestamp    time.Time         `json:"timestamp"`
	Category     EventCategory     `json:"category"`
	Action       Action            `json:"action"`
	SubjectEmail string            `json:"subjectEmail,omitempty"`
	Actor        string            `json:"actor"`
	ActorID      string            `json:"actorId,omitempty"`
	RequestID    string            `json:"requestId,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
}

// Store persists activity entries. ListRecent returns newest first.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}
