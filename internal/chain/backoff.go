package chain

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
)

// errPending is retried until the transaction confirms or ctx is done
var errPending = errors.New("transaction pending")

// newPollBackOff doubles the wait between confirmation checks from
// PollInterval up to MaxPollInterval, stopping only when ctx is done
func newPollBackOff(ctx context.Context, cfg Config) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.PollInterval
	b.MaxInterval = cfg.MaxPollInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(b, ctx)
}
