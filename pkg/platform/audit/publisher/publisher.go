// Package publisher emits activity log entries. It is append-only and uses
// the storage layer for persistence so tests can swap sinks easily.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	audit "assistflow/pkg/platform/audit"
	"assistflow/pkg/requestcontext"
)

// Publisher fills in request metadata and appends entries to a store,
// either inline or through a buffered background worker.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer chan audit.Entry
	wg     sync.WaitGroup
	once   sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer makes Emit enqueue to a buffer of size n drained by a
// background goroutine. When the buffer is full Emit appends inline instead,
// so entries are never dropped.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = make(chan audit.Entry, n)
		}
	}
}

// WithLogger sets the logger used for async write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher over store. Without options it is synchronous.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records entry. ID, Timestamp, Category, Actor and RequestID are
// filled from ctx when unset.
func (p *Publisher) Emit(ctx context.Context, entry audit.Entry) error {
	entry = enrich(ctx, entry)
	if p.buffer == nil {
		return p.store.Append(ctx, entry)
	}
	select {
	case p.buffer <- entry:
		return nil
	default:
	}
	p.logger.WarnContext(ctx, "activity buffer full, appending inline",
		"action", entry.Action,
		"subject", entry.SubjectEmail,
	)
	return p.store.Append(ctx, entry)
}

// Recent returns the newest entries.
func (p *Publisher) Recent(ctx context.Context, limit int) ([]audit.Entry, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close stops the background worker after draining buffered entries.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for entry := range p.buffer {
		if err := p.store.Append(context.Background(), entry); err != nil {
			p.logger.Error("failed to persist activity entry",
				"action", entry.Action,
				"subject", entry.SubjectEmail,
				"error", err,
			)
		}
	}
}

func enrich(ctx context.Context, entry audit.Entry) audit.Entry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}
	if entry.Category == "" {
		entry.Category = entry.Action.Category()
	}
	if entry.Actor == "" {
		entry.Actor = string(requestcontext.Actor(ctx))
	}
	if entry.ActorID == "" {
		entry.ActorID = requestcontext.ActorID(ctx)
	}
	if entry.RequestID == "" {
		entry.RequestID = requestcontext.RequestID(ctx)
	}
	return entry
}
