package service

import (
	applicantModels "assistflow/internal/applicant/models"
	documentModels "assistflow/internal/documents/models"
)

// RegisterCommand is a validated registration form. Password is plaintext
// and only ever stored as a bcrypt hash.
type RegisterCommand struct {
	Profile  applicantModels.Profile
	Password string
}

// SubmitDocumentCommand is a validated upload. ResubmissionOf names the
// rejected document being replaced, if any.
type SubmitDocumentCommand struct {
	Upload documentModels.Upload
}

// DecideDocumentCommand is a reviewer verdict on one document.
type DecideDocumentCommand struct {
	DocumentID string
	Decision   documentModels.Decision
	Reason     string
}

// BankAccountCommand carries disbursement details.
type BankAccountCommand struct {
	AccountHolderName string
	BankName          string
	RoutingNumber     string
	AccountNumber     string
	AccountType       string
}
