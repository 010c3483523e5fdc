package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dErrors "assistflow/pkg/domain-errors"
)

// PendingVerification is the reviewer-facing projection of an applicant who
// has registered but not yet been sent a code.
type PendingVerification struct {
	Email              string    `json:"email"`
	FullName           string    `json:"fullName"`
	PhoneNumber        string    `json:"phoneNumber,omitempty"`
	RegistrationNumber string    `json:"registrationNumber"`
	RegisteredAt       time.Time `json:"registeredAt"`
}

// NewPendingVerification projects a freshly registered applicant.
func NewPendingVerification(a *Applicant) PendingVerification {
	return PendingVerification{
		Email:              a.Email,
		FullName:           a.FullName(),
		PhoneNumber:        a.PhoneNumber,
		RegistrationNumber: a.RegistrationNumber,
		RegisteredAt:       a.RegisteredAt,
	}
}

// ApprovalNotification is the consume-once signal the applicant's poller
// waits for after approval.
type ApprovalNotification struct {
	Email      string          `json:"email"`
	Amount     decimal.Decimal `json:"amount"`
	ApprovedAt time.Time       `json:"approvedAt"`
}

var routingNumberPattern = regexp.MustCompile(`^[0-9]{9}$`)
var accountNumberPattern = regexp.MustCompile(`^[0-9]{4,17}$`)

// BankAccount is where the approved amount is disbursed. The full account
// number is stored; read models only ever expose the masked form.
type BankAccount struct {
	Email             string    `json:"email"`
	AccountHolderName string    `json:"accountHolderName"`
	BankName          string    `json:"bankName"`
	RoutingNumber     string    `json:"routingNumber"`
	AccountNumber     string    `json:"accountNumber"`
	AccountType       string    `json:"accountType"`
	SavedAt           time.Time `json:"savedAt"`
}

// NewBankAccount validates the disbursement details.
func NewBankAccount(email, holder, bank, routing, account, accountType string, now time.Time) (*BankAccount, error) {
	holder = strings.TrimSpace(holder)
	if holder == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "account holder name is required")
	}
	if !routingNumberPattern.MatchString(routing) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "routing number must be 9 digits")
	}
	if !accountNumberPattern.MatchString(account) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "account number must be 4 to 17 digits")
	}
	switch accountType {
	case "checking", "savings":
	case "":
		accountType = "checking"
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "account type must be checking or savings")
	}
	return &BankAccount{
		Email:             email,
		AccountHolderName: holder,
		BankName:          strings.TrimSpace(bank),
		RoutingNumber:     routing,
		AccountNumber:     account,
		AccountType:       accountType,
		SavedAt:           now,
	}, nil
}

// MaskedAccountNumber shows only the last four digits.
func (b *BankAccount) MaskedAccountNumber() string {
	n := len(b.AccountNumber)
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	return strings.Repeat("*", n-4) + b.AccountNumber[n-4:]
}
