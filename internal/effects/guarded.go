package effects

import (
	"context"
	"log/slog"

	"assistflow/pkg/platform/circuit"
)

// GuardedDeliverer sends through a broker and falls back to another
// deliverer once the broker keeps failing. The primary is always tried so
// its successes can close the circuit again.
type GuardedDeliverer struct {
	primary  CodeDeliverer
	fallback CodeDeliverer
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewGuardedDeliverer(primary, fallback CodeDeliverer, breaker *circuit.Breaker, logger *slog.Logger) *GuardedDeliverer {
	return &GuardedDeliverer{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (g *GuardedDeliverer) DeliverCode(ctx context.Context, d CodeDelivery) error {
	err := g.primary.DeliverCode(ctx, d)
	if err == nil {
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			g.logger.InfoContext(ctx, "circuit closed", "breaker", g.breaker.Name())
		}
		return nil
	}
	useFallback, change := g.breaker.RecordFailure()
	if change.Opened {
		g.logger.WarnContext(ctx, "circuit opened", "breaker", g.breaker.Name(), "error", err)
	}
	if !useFallback {
		return err
	}
	return g.fallback.DeliverCode(ctx, d)
}

// GuardedTrigger is GuardedDeliverer for disbursements.
type GuardedTrigger struct {
	primary  DisbursementTrigger
	fallback DisbursementTrigger
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewGuardedTrigger(primary, fallback DisbursementTrigger, breaker *circuit.Breaker, logger *slog.Logger) *GuardedTrigger {
	return &GuardedTrigger{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (g *GuardedTrigger) TriggerDisbursement(ctx context.Context, d Disbursement) error {
	err := g.primary.TriggerDisbursement(ctx, d)
	if err == nil {
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			g.logger.InfoContext(ctx, "circuit closed", "breaker", g.breaker.Name())
		}
		return nil
	}
	useFallback, change := g.breaker.RecordFailure()
	if change.Opened {
		g.logger.WarnContext(ctx, "circuit opened", "breaker", g.breaker.Name(), "error", err)
	}
	if !useFallback {
		return err
	}
	g.logger.ErrorContext(ctx, "disbursement broker unavailable, recording for manual release",
		"email", d.Email,
		"registration_number", d.RegistrationNumber,
		"error", err,
	)
	return g.fallback.TriggerDisbursement(ctx, d)
}
