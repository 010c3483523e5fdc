// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets values; services only read them:
//
//	actor := requestcontext.Actor(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithActor(ctx, requestcontext.ActorReviewer)
package requestcontext

import (
	"context"
	"time"
)

// ActorKind names which side of the workflow issued a call.
type ActorKind string

const (
	ActorApplicant ActorKind = "applicant"
	ActorReviewer  ActorKind = "reviewer"
	ActorSystem    ActorKind = "system"
)

type (
	actorKey       struct{}
	actorIDKey     struct{}
	applicantKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue.
var (
	ContextKeyActor       = actorKey{}
	ContextKeyActorID     = actorIDKey{}
	ContextKeyApplicant   = applicantKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Actor
// -----------------------------------------------------------------------------

// Actor returns the calling actor. Calls without an actor are treated as
// system calls (workers, CLI, tests).
func Actor(ctx context.Context) ActorKind {
	if a, ok := ctx.Value(ContextKeyActor).(ActorKind); ok {
		return a
	}
	return ActorSystem
}

// WithActor injects the calling actor.
func WithActor(ctx context.Context, actor ActorKind) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// ActorID identifies the person behind the actor (reviewer name, applicant email).
func ActorID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyActorID).(string); ok {
		return id
	}
	return ""
}

// WithActorID injects the actor identifier.
func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyActorID, id)
}

// ApplicantEmail returns the authenticated applicant email, if any.
func ApplicantEmail(ctx context.Context) string {
	if email, ok := ctx.Value(ContextKeyApplicant).(string); ok {
		return email
	}
	return ""
}

// WithApplicant marks ctx as an applicant call for email.
func WithApplicant(ctx context.Context, email string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyApplicant, email)
	ctx = WithActorID(ctx, email)
	return WithActor(ctx, ActorApplicant)
}

// WithReviewer marks ctx as a reviewer call.
func WithReviewer(ctx context.Context, reviewerID string) context.Context {
	ctx = WithActorID(ctx, reviewerID)
	return WithActor(ctx, ActorReviewer)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time, falling back to time.Now().
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Pollers use it to keep one
// timestamp per tick; tests use it to pin clocks.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
