// Package email normalises applicant email addresses. The normalised form is
// the applicant's identity and appears in every storage key.
package email

import (
	"net/mail"
	"strings"

	dErrors "assistflow/pkg/domain-errors"
)

const maxLength = 254

// Normalize trims surrounding space and lowercases the address.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Parse normalises address and rejects anything that is not a bare
// local@domain address. Keys are ':'-delimited, so ':' is rejected as well.
func Parse(address string) (string, error) {
	normalized := Normalize(address)
	if normalized == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if len(normalized) > maxLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is too long")
	}
	if strings.ContainsAny(normalized, ": \t") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email contains invalid characters")
	}
	parsed, err := mail.ParseAddress(normalized)
	if err != nil || parsed.Address != normalized || parsed.Name != "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is not a valid address")
	}
	at := strings.LastIndexByte(normalized, '@')
	if at <= 0 || !strings.Contains(normalized[at+1:], ".") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is not a valid address")
	}
	return normalized, nil
}
