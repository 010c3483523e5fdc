// Package store persists applicants and their verification-side projections
// in the shared key-value store.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"assistflow/internal/applicant/models"
	"assistflow/internal/platform/kvstore"
	"assistflow/pkg/platform/sentinel"
)

const (
	applicantPrefix    = "applicant:"
	registrationPrefix = "registration_number:"
	pendingPrefix      = "pending_verification:"
	approvalPrefix     = "approval_notification:"
	bankAccountPrefix  = "bank_account:"
	credentialPrefix   = "credential:"
)

// Store is the applicant repository.
type Store struct {
	kv kvstore.Store
}

// New creates an applicant repository over kv.
func New(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

type registrationReservation struct {
	Email string `json:"email"`
}

// Create inserts a new applicant. An existing record for the email returns
// sentinel.ErrConflict.
func (s *Store) Create(ctx context.Context, a *models.Applicant) error {
	version, err := kvstore.CASJSON(ctx, s.kv, applicantPrefix+a.Email, 0, a)
	if err != nil {
		return fmt.Errorf("create applicant: %w", err)
	}
	a.Version = version
	return nil
}

type credential struct {
	PasswordHash string `json:"passwordHash"`
}

// CreateCredential stores the password hash for email. It lives outside the
// applicant record so it never leaves the store with an applicant. An
// existing credential returns sentinel.ErrConflict.
func (s *Store) CreateCredential(ctx context.Context, email, passwordHash string) error {
	if _, err := kvstore.CASJSON(ctx, s.kv, credentialPrefix+email, 0, credential{PasswordHash: passwordHash}); err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

// FindPasswordHash loads the password hash for email.
func (s *Store) FindPasswordHash(ctx context.Context, email string) (string, error) {
	c, _, err := kvstore.GetJSON[credential](ctx, s.kv, credentialPrefix+email)
	if err != nil {
		return "", fmt.Errorf("find credential: %w", err)
	}
	return c.PasswordHash, nil
}

// DeleteCredential removes a credential whose applicant was never created.
func (s *Store) DeleteCredential(ctx context.Context, email string) error {
	return s.kv.Delete(ctx, credentialPrefix+email)
}

// ReserveRegistrationNumber claims number for email. Reuse returns sentinel.ErrConflict.
func (s *Store) ReserveRegistrationNumber(ctx context.Context, number, email string) error {
	if _, err := kvstore.CASJSON(ctx, s.kv, registrationPrefix+number, 0, registrationReservation{Email: email}); err != nil {
		return fmt.Errorf("reserve registration number: %w", err)
	}
	return nil
}

// ReleaseRegistrationNumber frees a reservation whose applicant was never created.
func (s *Store) ReleaseRegistrationNumber(ctx context.Context, number string) error {
	return s.kv.Delete(ctx, registrationPrefix+number)
}

// FindByEmail loads an applicant with its current version.
func (s *Store) FindByEmail(ctx context.Context, email string) (*models.Applicant, error) {
	a, version, err := kvstore.GetJSON[models.Applicant](ctx, s.kv, applicantPrefix+email)
	if err != nil {
		return nil, fmt.Errorf("find applicant: %w", err)
	}
	a.Version = version
	return &a, nil
}

// Update writes a back if it is unchanged since it was read. A stale version
// returns sentinel.ErrConflict; a changed registration number returns
// sentinel.ErrInvalidState.
func (s *Store) Update(ctx context.Context, a *models.Applicant) error {
	current, version, err := kvstore.GetJSON[models.Applicant](ctx, s.kv, applicantPrefix+a.Email)
	if err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}
	if version != a.Version {
		return fmt.Errorf("update applicant: %w", sentinel.ErrConflict)
	}
	if current.RegistrationNumber != a.RegistrationNumber {
		return fmt.Errorf("registration number is immutable: %w", sentinel.ErrInvalidState)
	}
	next, err := kvstore.CASJSON(ctx, s.kv, applicantPrefix+a.Email, a.Version, a)
	if err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}
	a.Version = next
	return nil
}

// List returns every applicant ordered by registration time.
func (s *Store) List(ctx context.Context) ([]*models.Applicant, error) {
	records, err := kvstore.ScanJSON[models.Applicant](ctx, s.kv, applicantPrefix)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	out := make([]*models.Applicant, 0, len(records))
	for _, r := range records {
		a := r.Value
		a.Version = r.Version
		out = append(out, &a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out, nil
}

// SavePending writes the reviewer-facing pending projection.
func (s *Store) SavePending(ctx context.Context, p models.PendingVerification) error {
	return kvstore.PutJSON(ctx, s.kv, pendingPrefix+p.Email, p)
}

// DeletePending removes the projection. Absent keys are ignored.
func (s *Store) DeletePending(ctx context.Context, email string) error {
	return s.kv.Delete(ctx, pendingPrefix+email)
}

// ListPending returns pending verifications, oldest registration first.
func (s *Store) ListPending(ctx context.Context) ([]models.PendingVerification, error) {
	records, err := kvstore.ScanJSON[models.PendingVerification](ctx, s.kv, pendingPrefix)
	if err != nil {
		return nil, fmt.Errorf("list pending verifications: %w", err)
	}
	out := make([]models.PendingVerification, 0, len(records))
	for _, r := range records {
		out = append(out, r.Value)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out, nil
}

// PutApprovalNotification writes the consume-once approval signal.
func (s *Store) PutApprovalNotification(ctx context.Context, n models.ApprovalNotification) error {
	return kvstore.PutJSON(ctx, s.kv, approvalPrefix+n.Email, n)
}

// TakeApprovalNotification reads and deletes the approval signal. The delete
// is a CAS on the read version so two concurrent readers cannot both take it.
// Returns (nil, nil) when there is nothing to take.
func (s *Store) TakeApprovalNotification(ctx context.Context, email string) (*models.ApprovalNotification, error) {
	key := approvalPrefix + email
	n, version, err := kvstore.GetJSON[models.ApprovalNotification](ctx, s.kv, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read approval notification: %w", err)
	}
	if n.Email == "" {
		// tombstone of a concurrent take
		return nil, nil
	}
	if err := s.claim(ctx, key, version); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, nil
		}
		return nil, fmt.Errorf("consume approval notification: %w", err)
	}
	return &n, nil
}

// claim marks key as taken by bumping its version with a tombstone, then
// deletes it. Only the caller whose CAS wins proceeds.
func (s *Store) claim(ctx context.Context, key string, version int64) error {
	if _, err := s.kv.CompareAndSwap(ctx, key, version, []byte(`null`)); err != nil {
		return err
	}
	return s.kv.Delete(ctx, key)
}

// SaveBankAccount stores the disbursement account, replacing any previous one.
func (s *Store) SaveBankAccount(ctx context.Context, b *models.BankAccount) error {
	return kvstore.PutJSON(ctx, s.kv, bankAccountPrefix+b.Email, b)
}

// FindBankAccount loads the disbursement account.
func (s *Store) FindBankAccount(ctx context.Context, email string) (*models.BankAccount, error) {
	b, _, err := kvstore.GetJSON[models.BankAccount](ctx, s.kv, bankAccountPrefix+email)
	if err != nil {
		return nil, fmt.Errorf("find bank account: %w", err)
	}
	return &b, nil
}
