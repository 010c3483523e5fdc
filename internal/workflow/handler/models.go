package handler

import (
	"regexp"
	"strings"
	"time"

	applicantModels "assistflow/internal/applicant/models"
	documentModels "assistflow/internal/documents/models"
	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/email"
	"assistflow/pkg/platform/secrets"
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Email              string `json:"email"`
	FirstName          string `json:"firstName"`
	MiddleName         string `json:"middleName"`
	LastName           string `json:"lastName"`
	DateOfBirth        string `json:"dateOfBirth"`
	Gender             string `json:"gender"`
	PhoneNumber        string `json:"phoneNumber"`
	HomeAddress        string `json:"homeAddress"`
	City               string `json:"city"`
	State              string `json:"state"`
	ZipCode            string `json:"zipCode"`
	RelationshipStatus string `json:"relationshipStatus"`
	NumberOfChildren   int    `json:"numberOfChildren"`
	Password           string `json:"password"`
	ConfirmPassword    string `json:"confirmPassword"`
}

func (r *RegisterRequest) Validate() error {
	addr, err := email.Parse(r.Email)
	if err != nil {
		return err
	}
	r.Email = addr
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.FirstName == "" || r.LastName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "first and last name are required")
	}
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	if _, err := time.Parse(time.DateOnly, r.DateOfBirth); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "date of birth must be YYYY-MM-DD")
	}
	if r.NumberOfChildren < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "number of children cannot be negative")
	}
	if r.Password != r.ConfirmPassword {
		return dErrors.New(dErrors.CodeInvalidInput, "passwords do not match")
	}
	return secrets.CheckPolicy(r.Password)
}

func (r *RegisterRequest) profile() applicantModels.Profile {
	return applicantModels.Profile{
		Email:       r.Email,
		FirstName:   r.FirstName,
		MiddleName:  strings.TrimSpace(r.MiddleName),
		LastName:    r.LastName,
		DateOfBirth: r.DateOfBirth,
		Gender:      r.Gender,
		PhoneNumber: strings.TrimSpace(r.PhoneNumber),
		Address: applicantModels.Address{
			HomeAddress: strings.TrimSpace(r.HomeAddress),
			City:        strings.TrimSpace(r.City),
			State:       strings.TrimSpace(r.State),
			ZipCode:     strings.TrimSpace(r.ZipCode),
		},
		RelationshipStatus: r.RelationshipStatus,
		NumberOfChildren:   r.NumberOfChildren,
	}
}

// SessionRequest exchanges an email and password for a token.
type SessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SessionRequest) Validate() error {
	addr, err := email.Parse(r.Email)
	if err != nil {
		return err
	}
	r.Email = addr
	if r.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}
	return nil
}

// SessionResponse carries an applicant bearer token.
type SessionResponse struct {
	Applicant *applicantModels.Applicant `json:"applicant"`
	Token     string                     `json:"token"`
	ExpiresAt time.Time                  `json:"expiresAt"`
}

// SubmitCodeRequest is a verification code entry.
type SubmitCodeRequest struct {
	Code string `json:"code"`
}

func (r *SubmitCodeRequest) Validate() error {
	r.Code = strings.TrimSpace(r.Code)
	if !codePattern.MatchString(r.Code) {
		return dErrors.New(dErrors.CodeInvalidInput, "code must be 6 digits")
	}
	return nil
}

// SubmitDocumentRequest describes an uploaded file. FileRef is the handle
// returned by the file store.
type SubmitDocumentRequest struct {
	Category       string `json:"category"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	FileRef        string `json:"fileRef"`
	FileName       string `json:"fileName"`
	FileSize       int64  `json:"fileSize"`
	ContentType    string `json:"contentType"`
	ResubmissionOf string `json:"resubmissionOf"`
}

func (r *SubmitDocumentRequest) Validate() error {
	return r.upload().Validate()
}

func (r *SubmitDocumentRequest) upload() documentModels.Upload {
	return documentModels.Upload{
		Category:       documentModels.Category(strings.TrimSpace(r.Category)),
		Type:           strings.TrimSpace(r.Type),
		Description:    r.Description,
		FileRef:        r.FileRef,
		FileName:       r.FileName,
		FileSize:       r.FileSize,
		ContentType:    r.ContentType,
		ResubmissionOf: strings.TrimSpace(r.ResubmissionOf),
	}
}

// SubmitDocumentResponse returns the stored document and the new state.
type SubmitDocumentResponse struct {
	Document       *documentModels.Document       `json:"document"`
	LifecycleState applicantModels.LifecycleState `json:"lifecycleState"`
}

// DecisionRequest is a reviewer verdict.
type DecisionRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

func (r *DecisionRequest) Validate() error {
	switch documentModels.Decision(r.Decision) {
	case documentModels.DecisionApprove:
	case documentModels.DecisionReject:
		if strings.TrimSpace(r.Reason) == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "a rejection reason is required")
		}
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "decision must be approve or reject")
	}
	return nil
}

// AccountActionRequest changes an applicant's account status.
type AccountActionRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

func (r *AccountActionRequest) Validate() error {
	if _, ok := applicantModels.ParseAccountAction(r.Action); !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "action must be lock, suspend, block or reactivate")
	}
	return nil
}

// BankAccountRequest carries disbursement details.
type BankAccountRequest struct {
	AccountHolderName string `json:"accountHolderName"`
	BankName          string `json:"bankName"`
	RoutingNumber     string `json:"routingNumber"`
	AccountNumber     string `json:"accountNumber"`
	AccountType       string `json:"accountType"`
}

func (r *BankAccountRequest) Validate() error {
	r.RoutingNumber = strings.TrimSpace(r.RoutingNumber)
	r.AccountNumber = strings.TrimSpace(r.AccountNumber)
	if strings.TrimSpace(r.AccountHolderName) == "" || r.RoutingNumber == "" || r.AccountNumber == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "account holder, routing number and account number are required")
	}
	return nil
}

// BankAccountResponse never carries the full account number.
type BankAccountResponse struct {
	AccountHolderName string    `json:"accountHolderName"`
	BankName          string    `json:"bankName"`
	RoutingNumber     string    `json:"routingNumber"`
	AccountNumber     string    `json:"accountNumber"`
	AccountType       string    `json:"accountType"`
	SavedAt           time.Time `json:"savedAt"`
}

func toBankAccountResponse(b *applicantModels.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		AccountHolderName: b.AccountHolderName,
		BankName:          b.BankName,
		RoutingNumber:     b.RoutingNumber,
		AccountNumber:     b.MaskedAccountNumber(),
		AccountType:       b.AccountType,
		SavedAt:           b.SavedAt,
	}
}

// ApprovalResponse is returned once when the applicant's poller observes
// approval.
type ApprovalResponse struct {
	Approved   bool      `json:"approved"`
	Amount     string    `json:"amount"`
	ApprovedAt time.Time `json:"approvedAt"`
}
