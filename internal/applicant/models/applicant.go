package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dErrors "assistflow/pkg/domain-errors"
)

// Applicant is the aggregate root for one person moving through the
// assistance workflow.
//
// Invariants:
//   - Email is the identity; exactly one record exists per email
//   - RegistrationNumber is assigned at registration and never changes
//   - LifecycleState only moves forward along the happy path
//   - AccountStatus is orthogonal to LifecycleState; a non-active account
//     blocks every applicant-initiated transition but not reads
//   - ApprovalAmount is set exactly once, on entering APPROVED_FOR_ASSISTANCE
type Applicant struct {
	Email              string  `json:"email"`
	FirstName          string  `json:"firstName"`
	MiddleName         string  `json:"middleName,omitempty"`
	LastName           string  `json:"lastName"`
	DateOfBirth        string  `json:"dateOfBirth"`
	Gender             string  `json:"gender,omitempty"`
	PhoneNumber        string  `json:"phoneNumber,omitempty"`
	Address            Address `json:"address"`
	RelationshipStatus string  `json:"relationshipStatus,omitempty"`
	NumberOfChildren   int     `json:"numberOfChildren"`

	RegistrationNumber string           `json:"registrationNumber"`
	LifecycleState     LifecycleState   `json:"lifecycleState"`
	AccountStatus      AccountStatus    `json:"accountStatus"`
	StatusReason       string           `json:"statusReason,omitempty"`
	ApprovalAmount     *decimal.Decimal `json:"approvalAmount,omitempty"`

	RegisteredAt         time.Time  `json:"registeredAt"`
	CodeSentAt           *time.Time `json:"codeSentAt,omitempty"`
	VerifiedAt           *time.Time `json:"verifiedAt,omitempty"`
	EligibleAt           *time.Time `json:"eligibleAt,omitempty"`
	DocumentsSubmittedAt *time.Time `json:"documentsSubmittedAt,omitempty"`
	ApprovedAt           *time.Time `json:"approvedAt,omitempty"`
	StatusChangedAt      *time.Time `json:"statusChangedAt,omitempty"`

	// Version is the store version the record was read at.
	Version int64 `json:"-"`
}

// Address groups the postal fields captured at registration.
type Address struct {
	HomeAddress string `json:"homeAddress"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
}

// Profile is the registration form.
type Profile struct {
	Email              string
	FirstName          string
	MiddleName         string
	LastName           string
	DateOfBirth        string
	Gender             string
	PhoneNumber        string
	Address            Address
	RelationshipStatus string
	NumberOfChildren   int
}

// NewApplicant builds a freshly registered applicant.
func NewApplicant(p Profile, registrationNumber string, now time.Time) (*Applicant, error) {
	if p.Email == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "first and last name are required")
	}
	if p.NumberOfChildren < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "number of children cannot be negative")
	}
	if registrationNumber == "" {
		return nil, dErrors.New(dErrors.CodeInternal, "registration number not assigned")
	}
	return &Applicant{
		Email:              p.Email,
		FirstName:          strings.TrimSpace(p.FirstName),
		MiddleName:         strings.TrimSpace(p.MiddleName),
		LastName:           strings.TrimSpace(p.LastName),
		DateOfBirth:        p.DateOfBirth,
		Gender:             p.Gender,
		PhoneNumber:        p.PhoneNumber,
		Address:            p.Address,
		RelationshipStatus: p.RelationshipStatus,
		NumberOfChildren:   p.NumberOfChildren,
		RegistrationNumber: registrationNumber,
		LifecycleState:     StatePendingVerification,
		AccountStatus:      AccountActive,
		RegisteredAt:       now,
	}, nil
}

// FullName joins the name fields for display.
func (a *Applicant) FullName() string {
	parts := []string{a.FirstName}
	if a.MiddleName != "" {
		parts = append(parts, a.MiddleName)
	}
	parts = append(parts, a.LastName)
	return strings.Join(parts, " ")
}

func (a *Applicant) IsActive() bool {
	return a.AccountStatus == AccountActive
}

func (a *Applicant) IsApproved() bool {
	return a.LifecycleState == StateApprovedForAssistance
}

// RequireActive rejects applicant-initiated transitions on non-active accounts.
func (a *Applicant) RequireActive() error {
	if !a.IsActive() {
		return dErrors.New(dErrors.CodeForbidden, "account is "+string(a.AccountStatus))
	}
	return nil
}

// CanIssueCode reports whether a reviewer may (re)issue a verification code.
func (a *Applicant) CanIssueCode() error {
	switch a.LifecycleState {
	case StatePendingVerification, StateAwaitingCodeEntry:
		return nil
	default:
		return dErrors.New(dErrors.CodeInvalidState, "applicant is already verified")
	}
}

// ApplyCodeIssued moves the applicant to AWAITING_CODE_ENTRY. Re-issuing
// keeps the state and refreshes CodeSentAt.
func (a *Applicant) ApplyCodeIssued(now time.Time) {
	a.LifecycleState = StateAwaitingCodeEntry
	a.CodeSentAt = &now
}

// CanVerify checks the applicant is waiting for a code.
func (a *Applicant) CanVerify() error {
	if err := a.RequireActive(); err != nil {
		return err
	}
	if a.LifecycleState != StateAwaitingCodeEntry {
		return dErrors.New(dErrors.CodeInvalidState, "no verification code is awaiting entry")
	}
	return nil
}

// ApplyVerified records a successful code entry.
func (a *Applicant) ApplyVerified(now time.Time) {
	a.LifecycleState = StateVerifiedPendingEligibility
	a.VerifiedAt = &now
}

// CanConfirmEligibility checks the eligibility sign-off precondition.
func (a *Applicant) CanConfirmEligibility() error {
	if err := a.RequireActive(); err != nil {
		return err
	}
	if a.LifecycleState != StateVerifiedPendingEligibility {
		return dErrors.New(dErrors.CodeInvalidState, "applicant is not awaiting eligibility confirmation")
	}
	return nil
}

// ApplyEligible records eligibility sign-off.
func (a *Applicant) ApplyEligible(now time.Time) {
	a.LifecycleState = StateEligible
	a.EligibleAt = &now
}

// CanSubmitDocument checks the applicant may upload documents.
func (a *Applicant) CanSubmitDocument() error {
	if err := a.RequireActive(); err != nil {
		return err
	}
	if !a.LifecycleState.AcceptsDocuments() {
		return dErrors.New(dErrors.CodeInvalidState, "applicant cannot submit documents in state "+string(a.LifecycleState))
	}
	return nil
}

// ApplyDocumentSubmitted advances to DOCUMENTS_SUBMITTED on the first upload
// and DOCUMENTS_UNDER_REVIEW on later ones.
func (a *Applicant) ApplyDocumentSubmitted(now time.Time) {
	switch a.LifecycleState {
	case StateEligible:
		a.LifecycleState = StateDocumentsSubmitted
		a.DocumentsSubmittedAt = &now
	case StateDocumentsSubmitted:
		a.LifecycleState = StateDocumentsUnderReview
	}
}

// CanApprove reports whether the aggregation rule may approve the applicant.
// Already approved applicants return CodeConflict so the side effects run once.
func (a *Applicant) CanApprove() error {
	switch a.LifecycleState {
	case StateApprovedForAssistance:
		return dErrors.New(dErrors.CodeConflict, "applicant is already approved")
	case StateDocumentsSubmitted, StateDocumentsUnderReview:
		return nil
	default:
		return dErrors.New(dErrors.CodeInvalidState, "applicant has no documents under review")
	}
}

// ApplyApproval enters the terminal state with the granted amount.
func (a *Applicant) ApplyApproval(amount decimal.Decimal, now time.Time) {
	a.LifecycleState = StateApprovedForAssistance
	a.ApprovalAmount = &amount
	a.ApprovedAt = &now
}

// CanApplyAccountAction validates a reviewer account action.
// Reactivation needs a non-active account; every other action needs a reason.
func (a *Applicant) CanApplyAccountAction(action AccountAction, reason string) error {
	if !action.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown account action")
	}
	if action == ActionReactivate {
		if a.IsActive() {
			return dErrors.New(dErrors.CodeInvalidState, "account is already active")
		}
		return nil
	}
	if strings.TrimSpace(reason) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "a reason is required to "+string(action)+" an account")
	}
	return nil
}

// ApplyAccountAction sets the account status. Call CanApplyAccountAction first.
func (a *Applicant) ApplyAccountAction(action AccountAction, reason string, now time.Time) {
	a.AccountStatus = action.TargetStatus()
	a.StatusReason = strings.TrimSpace(reason)
	a.StatusChangedAt = &now
}
