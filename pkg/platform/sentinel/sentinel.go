package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: key does not exist in the store
//   - ErrConflict: compare-and-swap lost, or create on an existing key
//   - ErrAlreadyUsed: one-shot resource (verification code, decision) already consumed
//   - ErrInvalidState: record in the wrong state for the requested operation
//   - ErrCorrupt: stored bytes do not decode into the expected record
//   - ErrUnavailable: backend temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrCorrupt      = errors.New("corrupt record")
	ErrUnavailable  = errors.New("unavailable")
)
