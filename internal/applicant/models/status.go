package models

// LifecycleState is the applicant's position on the happy path.
type LifecycleState string

const (
	StatePendingVerification        LifecycleState = "PENDING_VERIFICATION"
	StateAwaitingCodeEntry          LifecycleState = "AWAITING_CODE_ENTRY"
	StateVerifiedPendingEligibility LifecycleState = "VERIFIED_PENDING_ELIGIBILITY"
	StateEligible                   LifecycleState = "ELIGIBLE"
	StateDocumentsSubmitted         LifecycleState = "DOCUMENTS_SUBMITTED"
	StateDocumentsUnderReview       LifecycleState = "DOCUMENTS_UNDER_REVIEW"
	StateApprovedForAssistance      LifecycleState = "APPROVED_FOR_ASSISTANCE"
)

// IsVerified reports whether the applicant has entered a valid code.
func (s LifecycleState) IsVerified() bool {
	switch s {
	case StatePendingVerification, StateAwaitingCodeEntry:
		return false
	default:
		return true
	}
}

// AcceptsDocuments reports whether uploads are allowed in this state.
func (s LifecycleState) AcceptsDocuments() bool {
	switch s {
	case StateEligible, StateDocumentsSubmitted, StateDocumentsUnderReview:
		return true
	default:
		return false
	}
}

// AccountStatus is the reviewer-controlled account flag.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountLocked    AccountStatus = "locked"
	AccountSuspended AccountStatus = "suspended"
	AccountBlocked   AccountStatus = "blocked"
)

// AccountAction is a reviewer command on AccountStatus.
type AccountAction string

const (
	ActionLock       AccountAction = "lock"
	ActionSuspend    AccountAction = "suspend"
	ActionBlock      AccountAction = "block"
	ActionReactivate AccountAction = "reactivate"
)

// ParseAccountAction validates a wire value.
func ParseAccountAction(s string) (AccountAction, bool) {
	a := AccountAction(s)
	return a, a.IsValid()
}

func (a AccountAction) IsValid() bool {
	switch a {
	case ActionLock, ActionSuspend, ActionBlock, ActionReactivate:
		return true
	default:
		return false
	}
}

// TargetStatus is the status the action produces.
func (a AccountAction) TargetStatus() AccountStatus {
	switch a {
	case ActionLock:
		return AccountLocked
	case ActionSuspend:
		return AccountSuspended
	case ActionBlock:
		return AccountBlocked
	default:
		return AccountActive
	}
}
