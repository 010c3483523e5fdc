package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"assistflow/internal/platform/kvstore"
	"assistflow/internal/verification/models"
	"assistflow/pkg/platform/sentinel"
)

const (
	challengePrefix = "verification_code:"
	resendPrefix    = "resend_request:"
)

// Store persists challenges and resend requests.
type Store struct {
	kv kvstore.Store
}

func New(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// FindChallenge returns the latest challenge for email with its version.
func (s *Store) FindChallenge(ctx context.Context, email string) (*models.Challenge, error) {
	c, version, err := kvstore.GetJSON[models.Challenge](ctx, s.kv, challengePrefix+email)
	if err != nil {
		return nil, fmt.Errorf("find challenge: %w", err)
	}
	c.Version = version
	return &c, nil
}

// SaveChallenge writes c if the stored challenge is still at expectedVersion
// (0 when none existed).
func (s *Store) SaveChallenge(ctx context.Context, c *models.Challenge, expectedVersion int64) error {
	version, err := kvstore.CASJSON(ctx, s.kv, challengePrefix+c.Email, expectedVersion, c)
	if err != nil {
		return fmt.Errorf("save challenge: %w", err)
	}
	c.Version = version
	return nil
}

// SaveResendRequest records or refreshes a resend request.
func (s *Store) SaveResendRequest(ctx context.Context, r models.ResendRequest) error {
	return kvstore.PutJSON(ctx, s.kv, resendPrefix+r.Email, r)
}

// DeleteResendRequest consumes the request. Reports whether one existed.
func (s *Store) DeleteResendRequest(ctx context.Context, email string) (bool, error) {
	key := resendPrefix + email
	_, err := s.kv.Get(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read resend request: %w", err)
	}
	if err := s.kv.Delete(ctx, key); err != nil {
		return false, fmt.Errorf("delete resend request: %w", err)
	}
	return true, nil
}

// ListResendRequests returns open requests, oldest first.
func (s *Store) ListResendRequests(ctx context.Context) ([]models.ResendRequest, error) {
	records, err := kvstore.ScanJSON[models.ResendRequest](ctx, s.kv, resendPrefix)
	if err != nil {
		return nil, fmt.Errorf("list resend requests: %w", err)
	}
	out := make([]models.ResendRequest, 0, len(records))
	for _, r := range records {
		out = append(out, r.Value)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RequestedAt.Before(out[j].RequestedAt)
	})
	return out, nil
}
