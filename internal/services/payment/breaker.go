package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mcoot/rightsquest/internal/model"
)

// BreakerConfig controls the circuit breaker around a shared submitter
type BreakerConfig struct {
	MaxRequests         uint32        // probes allowed while half-open
	Interval            time.Duration // window for clearing counts while closed
	Timeout             time.Duration // open period before half-open
	ConsecutiveFailures uint32        // failures that open the circuit
}

// DefaultBreakerConfig returns the breaker settings used when none are given
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// BreakerSubmitter guards the transport behind a Submitter. Only transport
// faults count toward opening it: a signer declining and a caller giving up
// pass through without touching the counts.
type BreakerSubmitter struct {
	next    Submitter
	breaker *gobreaker.CircuitBreaker
}

var _ Submitter = (*BreakerSubmitter)(nil)

// NewBreakerSubmitter wraps next. A zero cfg takes DefaultBreakerConfig.
func NewBreakerSubmitter(next Submitter, name string, cfg BreakerConfig, logger *slog.Logger) *BreakerSubmitter {
	if cfg == (BreakerConfig{}) {
		cfg = DefaultBreakerConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &BreakerSubmitter{
		next: next,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil ||
					errors.Is(err, context.Canceled) ||
					errors.Is(err, model.ErrSignerRejected)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("submitter circuit state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			},
		}),
	}
}

// Submit forwards to the wrapped submitter unless the circuit is open
func (b *BreakerSubmitter) Submit(ctx context.Context, from, to Address, payload []byte) (model.TxRef, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.next.Submit(ctx, from, to, payload)
	})
	if err != nil {
		return "", err
	}
	ref, _ := result.(model.TxRef)
	return ref, nil
}

// State reports the circuit state as "closed", "half-open" or "open"
func (b *BreakerSubmitter) State() string {
	return b.breaker.State().String()
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
