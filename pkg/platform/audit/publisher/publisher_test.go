package publisher

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistflow/internal/platform/kvstore"
	audit "assistflow/pkg/platform/audit"
	auditkv "assistflow/pkg/platform/audit/store/kv"
	"assistflow/pkg/requestcontext"
)

func newStore(opts ...auditkv.Option) *auditkv.Store {
	return auditkv.New(kvstore.NewMemory(), opts...)
}

func TestPublisher_SyncMode(t *testing.T) {
	store := newStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Entry{
		Action:       audit.ActionRegistered,
		SubjectEmail: "a@example.com",
	})
	require.NoError(t, err)

	entries, err := pub.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionRegistered, entries[0].Action)
	assert.NotEmpty(t, entries[0].ID)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := newStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 10 {
		err := pub.Emit(context.Background(), audit.Entry{
			Action:    audit.ActionDocumentSubmitted,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	pub.Close()

	entries, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 10, "all entries should be drained on close")
}

// blockingStore holds the first Append until release is closed, pinning the
// background worker so the buffer can be filled.
type blockingStore struct {
	*auditkv.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) Append(ctx context.Context, entry audit.Entry) error {
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.entered)
		<-b.release
	}
	return b.Store.Append(ctx, entry)
}

func TestPublisher_BufferFullAppendsInline(t *testing.T) {
	store := &blockingStore{
		Store:   newStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	pub := NewPublisher(store, WithAsyncBuffer(1))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	emit := func(i int, action audit.Action) {
		require.NoError(t, pub.Emit(context.Background(), audit.Entry{
			Action:       action,
			SubjectEmail: fmt.Sprintf("user%d@example.com", i),
			Timestamp:    base.Add(time.Duration(i) * time.Second),
		}))
	}

	emit(0, audit.ActionRegistered)
	<-store.entered
	emit(1, audit.ActionRegistered)
	emit(2, audit.ActionAccountSuspended)

	inline, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, inline, 1, "the overflowing entry is written before Emit returns")
	assert.Equal(t, audit.ActionAccountSuspended, inline[0].Action)

	close(store.release)
	pub.Close()

	all, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPublisher_ConcurrentEmitsAreAllKept(t *testing.T) {
	store := newStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, pub.Emit(context.Background(), audit.Entry{
				Action:       audit.ActionRegistered,
				SubjectEmail: fmt.Sprintf("user%d@example.com", i),
			}))
		}()
	}
	wg.Wait()
	pub.Close()

	entries, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}

func TestPublisher_FillsMetadataFromContext(t *testing.T) {
	pub := NewPublisher(newStore())
	defer pub.Close()

	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithReviewer(ctx, "reviewer-1")
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	require.NoError(t, pub.Emit(ctx, audit.Entry{Action: audit.ActionDocumentApproved}))

	entries, err := pub.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	got := entries[0]
	assert.True(t, now.Equal(got.Timestamp))
	assert.Equal(t, "reviewer", got.Actor)
	assert.Equal(t, "reviewer-1", got.ActorID)
	assert.Equal(t, "req-42", got.RequestID)
	assert.Equal(t, audit.CategoryCompliance, got.Category)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	pub := NewPublisher(newStore())
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Entry{
		Action:    audit.ActionRegistered,
		Timestamp: customTime,
	}))

	entries, err := pub.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, customTime.Equal(entries[0].Timestamp))
}

func TestPublisher_RetentionKeepsNewest(t *testing.T) {
	store := newStore(auditkv.WithRetention(5))
	pub := NewPublisher(store)
	defer pub.Close()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 8 {
		require.NoError(t, pub.Emit(context.Background(), audit.Entry{
			Action:       audit.ActionDocumentSubmitted,
			SubjectEmail: fmt.Sprintf("user%d@example.com", i),
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := pub.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "user7@example.com", entries[0].SubjectEmail, "newest first")
	assert.Equal(t, "user3@example.com", entries[4].SubjectEmail)

	latest, err := pub.Recent(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, latest, 2)
}
