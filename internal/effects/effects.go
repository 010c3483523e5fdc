// Package effects delivers the workflow's outward side effects: verification
// codes to applicants and disbursement triggers to payments.
package effects

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// CodeDelivery is a verification code on its way to an applicant.
type CodeDelivery struct {
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Code        string    `json:"code"`
	Message     string    `json:"message"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// Disbursement asks payments to release the approved amount.
type Disbursement struct {
	Email              string          `json:"email"`
	RegistrationNumber string          `json:"registrationNumber"`
	Amount             decimal.Decimal `json:"amount"`
	ApprovedAt         time.Time       `json:"approvedAt"`
}

// CodeDeliverer sends a verification code out of band.
type CodeDeliverer interface {
	DeliverCode(ctx context.Context, d CodeDelivery) error
}

// DisbursementTrigger starts payment of an approval. It is called at most
// once per applicant.
type DisbursementTrigger interface {
	TriggerDisbursement(ctx context.Context, d Disbursement) error
}

// LogDeliverer writes codes to the log. Used when no broker is configured.
type LogDeliverer struct {
	logger *slog.Logger
}

func NewLogDeliverer(logger *slog.Logger) *LogDeliverer {
	return &LogDeliverer{logger: logger}
}

func (l *LogDeliverer) DeliverCode(ctx context.Context, d CodeDelivery) error {
	l.logger.InfoContext(ctx, "verification code delivered",
		"email", d.Email,
		"phone_number", d.PhoneNumber,
		"message", d.Message,
	)
	return nil
}

// LogTrigger writes disbursements to the log.
type LogTrigger struct {
	logger *slog.Logger
}

func NewLogTrigger(logger *slog.Logger) *LogTrigger {
	return &LogTrigger{logger: logger}
}

func (l *LogTrigger) TriggerDisbursement(ctx context.Context, d Disbursement) error {
	l.logger.InfoContext(ctx, "disbursement triggered",
		"email", d.Email,
		"registration_number", d.RegistrationNumber,
		"amount", d.Amount.StringFixed(2),
	)
	return nil
}
