// Package secrets hashes and checks applicant passwords with bcrypt.
package secrets

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	dErrors "assistflow/pkg/domain-errors"
)

// MinPasswordLength is the shortest password CheckPolicy accepts.
const MinPasswordLength = 8

// PasswordSpecials lists the characters CheckPolicy counts as special.
const PasswordSpecials = `!@#$%^&*(),.?":{}|<>`

// Hasher hashes at a fixed bcrypt cost. The zero value uses bcrypt.DefaultCost.
type Hasher struct {
	Cost int
}

// Hash returns a bcrypt hash of secret.
func (h Hasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "secret cannot be empty")
	}
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "secret is too long")
		}
		return "", fmt.Errorf("could not hash secret: %w", err)
	}
	return string(hashed), nil
}

// Verify checks if a plaintext secret matches a bcrypt hash.
func Verify(secret, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeInvalidInput, "invalid secret")
		}
		return fmt.Errorf("could not verify secret: %w", err)
	}
	return nil
}

// CheckPolicy enforces the registration password rules: MinPasswordLength
// characters with at least one upper case letter, one lower case letter, one
// digit and one of PasswordSpecials.
func CheckPolicy(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}
	switch {
	case !upper:
		return dErrors.New(dErrors.CodeInvalidInput, "password needs an upper case letter")
	case !lower:
		return dErrors.New(dErrors.CodeInvalidInput, "password needs a lower case letter")
	case !digit:
		return dErrors.New(dErrors.CodeInvalidInput, "password needs a digit")
	case !special:
		return dErrors.New(dErrors.CodeInvalidInput, "password needs a special character")
	}
	return nil
}
