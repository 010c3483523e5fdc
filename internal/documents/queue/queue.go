// Package queue is the reviewer-visible set of documents awaiting a decision.
//
// Entries live under review_queue:<documentID>. Reviewers may act on any
// entry, so there is no head-of-queue contract: ListPending orders by upload
// date for display only.
package queue

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"

	"assistflow/internal/documents/models"
	"assistflow/internal/platform/kvstore"
	"assistflow/pkg/platform/sentinel"
)

const prefix = "review_queue:"

// Queue is the review queue.
type Queue struct {
	kv kvstore.Store
}

func New(kv kvstore.Store) *Queue {
	return &Queue{kv: kv}
}

// Enqueue adds entry. Re-enqueueing the same document overwrites its entry.
func (q *Queue) Enqueue(ctx context.Context, entry models.QueueEntry) error {
	if entry.DocumentID == "" {
		return fmt.Errorf("enqueue: document id is required")
	}
	if err := kvstore.PutJSON(ctx, q.kv, prefix+entry.DocumentID, entry); err != nil {
		return fmt.Errorf("enqueue %s: %w", entry.DocumentID, err)
	}
	return nil
}

// Dequeue removes the entry for documentID. Removing an entry that is
// already gone is a no-op and reports false.
func (q *Queue) Dequeue(ctx context.Context, documentID string) (bool, error) {
	key := prefix + documentID
	if _, err := q.kv.Get(ctx, key); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("dequeue %s: %w", documentID, err)
	}
	if err := q.kv.Delete(ctx, key); err != nil {
		return false, fmt.Errorf("dequeue %s: %w", documentID, err)
	}
	return true, nil
}

// ListPending yields pending entries oldest upload first. Each range takes a
// fresh snapshot, so the sequence can be iterated again to observe later
// changes. A scan failure is yielded once as the error and ends iteration.
func (q *Queue) ListPending(ctx context.Context) iter.Seq2[models.QueueEntry, error] {
	return func(yield func(models.QueueEntry, error) bool) {
		entries, err := q.snapshot(ctx)
		if err != nil {
			yield(models.QueueEntry{}, err)
			return
		}
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Pending collects ListPending into a slice.
func (q *Queue) Pending(ctx context.Context) ([]models.QueueEntry, error) {
	return q.snapshot(ctx)
}

// Len counts pending entries.
func (q *Queue) Len(ctx context.Context) (int, error) {
	entries, err := q.kv.ScanPrefix(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("count review queue: %w", err)
	}
	return len(entries), nil
}

func (q *Queue) snapshot(ctx context.Context) ([]models.QueueEntry, error) {
	records, err := kvstore.ScanJSON[models.QueueEntry](ctx, q.kv, prefix)
	if err != nil {
		return nil, fmt.Errorf("scan review queue: %w", err)
	}
	out := make([]models.QueueEntry, 0, len(records))
	for _, r := range records {
		out = append(out, r.Value)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UploadDate.Equal(out[j].UploadDate) {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].UploadDate.Before(out[j].UploadDate)
	})
	return out, nil
}
