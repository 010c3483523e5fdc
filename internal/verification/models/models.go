package models

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// Challenge is a one-time verification code bound to one applicant.
//
// At most one unconsumed challenge exists per applicant: issuing a new one
// overwrites the previous record. Challenges never expire and attempts are
// not limited.
type Challenge struct {
	Email      string     `json:"email"`
	Code       string     `json:"code"`
	IssuedAt   time.Time  `json:"issuedAt"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`

	Version int64 `json:"-"`
}

// IsConsumed reports whether the code has already been used.
func (c *Challenge) IsConsumed() bool {
	return c.ConsumedAt != nil
}

// Matches compares code in constant time.
func (c *Challenge) Matches(code string) bool {
	return subtle.ConstantTimeCompare([]byte(c.Code), []byte(code)) == 1
}

// Message is the text delivered to the applicant with the code.
func (c *Challenge) Message() string {
	return fmt.Sprintf("Your Treasury ERA verification code is: %s. Please enter this code to complete your registration.", c.Code)
}

// ResendRequest is the applicant's signal that a fresh code is wanted. The
// reviewer consumes it by issuing a new challenge.
type ResendRequest struct {
	Email       string    `json:"email"`
	FullName    string    `json:"fullName,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
	Message     string    `json:"message,omitempty"`
}

// GenerateCode returns a 6-digit code uniform over [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
