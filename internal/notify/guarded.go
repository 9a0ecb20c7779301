package notify

import (
	"context"
	"fmt"
	"log/slog"

	"bloodlink/internal/domain"
	"bloodlink/internal/ports"
	id "bloodlink/pkg/domain"
	"bloodlink/pkg/platform/circuit"
)

// ErrCircuitOpen is returned without contacting the gateway while the
// breaker is open. It wraps ports.ErrNotAttempted, so the notification stays
// pending with its attempt count unchanged.
var ErrCircuitOpen = fmt.Errorf("notification dispatch circuit open: %w", ports.ErrNotAttempted)

// Guarded wraps a dispatcher with a circuit breaker so a failing gateway is
// not hammered by every escalation and retry.
type Guarded struct {
	next    ports.Dispatcher
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type GuardedOption func(*Guarded)

func WithGuardLogger(logger *slog.Logger) GuardedOption {
	return func(g *Guarded) {
		g.logger = logger
	}
}

func NewGuarded(next ports.Dispatcher, breaker *circuit.Breaker, opts ...GuardedOption) *Guarded {
	g := &Guarded{next: next, breaker: breaker}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guarded) SendToDonor(ctx context.Context, donorID id.DonorID, payload ports.Payload) error {
	return g.guard(ctx, func() error {
		return g.next.SendToDonor(ctx, donorID, payload)
	})
}

func (g *Guarded) Broadcast(ctx context.Context, recipientType domain.RecipientType, recipientIDs []string, payload ports.Payload) error {
	return g.guard(ctx, func() error {
		return g.next.Broadcast(ctx, recipientType, recipientIDs, payload)
	})
}

func (g *Guarded) guard(ctx context.Context, call func() error) error {
	if !g.breaker.Allow() {
		return ErrCircuitOpen
	}
	err := call()
	if err == nil {
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			g.log(ctx, slog.LevelInfo, "notification dispatch circuit closed")
		}
		return nil
	}
	if _, change := g.breaker.RecordFailure(); change.Opened {
		g.log(ctx, slog.LevelWarn, "notification dispatch circuit opened", "error", err)
	}
	return err
}

func (g *Guarded) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if g.logger == nil {
		return
	}
	g.logger.Log(ctx, level, msg, append(args, "breaker", g.breaker.Name())...)
}
