// Package store persists applicant documents under document:<email>:<id>
// with a document_owner:<id> index for lookups by id alone.
package store

import (
	"context"
	"fmt"
	"sort"

	"assistflow/internal/documents/models"
	"assistflow/internal/platform/kvstore"
)

const (
	documentPrefix = "document:"
	ownerPrefix    = "document_owner:"
)

type owner struct {
	Email string `json:"email"`
}

// Store is the document repository.
type Store struct {
	kv kvstore.Store
}

func New(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

func documentKey(email, id string) string {
	return kvstore.Key("document", email, id)
}

// Create inserts a new document. Reusing an id returns sentinel.ErrConflict.
func (s *Store) Create(ctx context.Context, d *models.Document) error {
	if _, err := kvstore.CASJSON(ctx, s.kv, ownerPrefix+d.ID, 0, owner{Email: d.Email}); err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	version, err := kvstore.CASJSON(ctx, s.kv, documentKey(d.Email, d.ID), 0, d)
	if err != nil {
		_ = s.kv.Delete(ctx, ownerPrefix+d.ID)
		return fmt.Errorf("create document: %w", err)
	}
	d.Version = version
	return nil
}

// FindByID resolves the owner index and loads the document.
func (s *Store) FindByID(ctx context.Context, id string) (*models.Document, error) {
	o, _, err := kvstore.GetJSON[owner](ctx, s.kv, ownerPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("find document owner: %w", err)
	}
	return s.Find(ctx, o.Email, id)
}

// Find loads one document of email.
func (s *Store) Find(ctx context.Context, email, id string) (*models.Document, error) {
	d, version, err := kvstore.GetJSON[models.Document](ctx, s.kv, documentKey(email, id))
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	d.Version = version
	return &d, nil
}

// Update writes d if unchanged since read; otherwise sentinel.ErrConflict.
func (s *Store) Update(ctx context.Context, d *models.Document) error {
	version, err := kvstore.CASJSON(ctx, s.kv, documentKey(d.Email, d.ID), d.Version, d)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	d.Version = version
	return nil
}

// Withdraw claims d with a CAS to the withdrawn tombstone and deletes it. A
// concurrent decision makes the claim fail with sentinel.ErrConflict.
func (s *Store) Withdraw(ctx context.Context, d *models.Document) error {
	claimed := *d
	claimed.Status = models.StatusWithdrawn
	if err := s.Update(ctx, &claimed); err != nil {
		return err
	}
	return s.Delete(ctx, &claimed)
}

// Delete removes the document and its index entry.
func (s *Store) Delete(ctx context.Context, d *models.Document) error {
	if err := s.kv.Delete(ctx, documentKey(d.Email, d.ID)); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := s.kv.Delete(ctx, ownerPrefix+d.ID); err != nil {
		return fmt.Errorf("delete document index: %w", err)
	}
	return nil
}

// ListByEmail returns the applicant's documents, oldest upload first.
// Withdrawn tombstones are skipped.
func (s *Store) ListByEmail(ctx context.Context, email string) ([]*models.Document, error) {
	return s.list(ctx, documentKey(email, ""))
}

// ListAll returns every document, oldest upload first.
func (s *Store) ListAll(ctx context.Context) ([]*models.Document, error) {
	return s.list(ctx, documentPrefix)
}

func (s *Store) list(ctx context.Context, prefix string) ([]*models.Document, error) {
	records, err := kvstore.ScanJSON[models.Document](ctx, s.kv, prefix)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]*models.Document, 0, len(records))
	for _, r := range records {
		if r.Value.Status == models.StatusWithdrawn {
			continue
		}
		d := r.Value
		d.Version = r.Version
		out = append(out, &d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadDate.Before(out[j].UploadDate)
	})
	return out, nil
}
