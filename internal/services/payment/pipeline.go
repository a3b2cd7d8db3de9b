package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/rightsquest/internal/model"
)

// DefaultConfirmTimeout bounds the confirmation wait when no option overrides it
const DefaultConfirmTimeout = 30 * time.Second

// ErrInvalidSigner is returned by Initialize for an unusable signer
var ErrInvalidSigner = errors.New("invalid signer")

// Pipeline validates, encodes, submits and confirms stablecoin transfers.
// Config is fixed at construction. The signer may be swapped at any time;
// each Pay call uses the signer present when it started.
type Pipeline struct {
	cfg            model.PaymentConfig
	token          Address
	confirmer      Confirmer
	signer         atomic.Pointer[Signer]
	confirmTimeout time.Duration
	logger         *slog.Logger
}

type options struct {
	logger         *slog.Logger
	confirmTimeout time.Duration
	name           string
}

// Option configures a Pipeline
type Option func(*options)

// WithLogger sets the logger for state transitions
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithConfirmTimeout sets how long Pay waits for the first confirmation
func WithConfirmTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.confirmTimeout = d
		}
	}
}

// WithName labels the pipeline's log lines
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// New creates a pipeline for one network configuration
func New(cfg model.PaymentConfig, confirmer Confirmer, opts ...Option) (*Pipeline, error) {
	if confirmer == nil {
		return nil, errors.New("payment pipeline requires a confirmer")
	}
	token, err := ParseAddress(cfg.TokenAddress)
	if err != nil {
		return nil, fmt.Errorf("token address: %w", err)
	}

	o := options{
		logger:         slog.New(slog.DiscardHandler),
		confirmTimeout: DefaultConfirmTimeout,
		name:           "payment",
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger.With(
		slog.String("pipeline", o.name),
		slog.Int64("chain_id", cfg.ChainID),
	)

	return &Pipeline{
		cfg:            cfg,
		token:          token,
		confirmer:      confirmer,
		confirmTimeout: o.confirmTimeout,
		logger:         logger,
	}, nil
}

// Config returns the network configuration
func (p *Pipeline) Config() model.PaymentConfig {
	return p.cfg
}

// Initialize installs the signer, replacing any previous one
func (p *Pipeline) Initialize(signer Signer) error {
	if signer.Submitter == nil {
		return fmt.Errorf("%w: submitter is required", ErrInvalidSigner)
	}
	if signer.From.IsZero() {
		return fmt.Errorf("%w: sender address is required", ErrInvalidSigner)
	}
	p.signer.Store(&signer)
	p.logger.Info("payment signer initialized", slog.String("from", signer.From.Checksum()))
	return nil
}

// Reset removes the signer. Attempts already running keep theirs.
func (p *Pipeline) Reset() {
	if p.signer.Swap(nil) != nil {
		p.logger.Info("payment signer reset")
	}
}

// Initialized reports whether a signer is installed
func (p *Pipeline) Initialized() bool {
	return p.signer.Load() != nil
}

// Validate checks a request without touching the network. The amount is
// checked before the recipient.
func Validate(req model.PaymentRequest) (Address, *big.Int, *model.PaymentError) {
	units, err := ParseAmount(req.Amount)
	if err != nil {
		return Address{}, nil, model.NewPaymentError(model.KindInvalidAmount, "Invalid payment amount", err)
	}
	recipient, err := ParseAddress(req.Recipient)
	if err != nil {
		return Address{}, nil, model.NewPaymentError(model.KindInvalidRecipient, "Invalid recipient address", err)
	}
	return recipient, units, nil
}

// Pay runs one payment attempt to a terminal state. It never returns an
// intermediate state.
func (p *Pipeline) Pay(ctx context.Context, req model.PaymentRequest) model.PaymentOutcome {
	log := p.logger.With(slog.String("attempt_id", uuid.NewString()))
	log.Info("payment requested",
		slog.String("amount", req.Amount),
		slog.String("recipient", req.Recipient),
		slog.String("description", req.Description),
		slog.Any("metadata", req.Metadata),
	)

	signer := p.signer.Load()
	if signer == nil {
		return p.fail(log, model.PaymentOutcome{}, model.NewPaymentError(
			model.KindNotInitialized, "Wallet client not initialized", model.ErrNotInitialized))
	}

	p.transition(log, model.PaymentStateValidating)
	recipient, units, perr := Validate(req)
	if perr != nil {
		return p.fail(log, model.PaymentOutcome{}, perr)
	}

	p.transition(log, model.PaymentStateEncoding)
	payload, err := EncodeTransfer(recipient, units)
	if err != nil {
		return p.fail(log, model.PaymentOutcome{}, model.NewPaymentError(
			model.KindInvalidAmount, "Invalid payment amount", err))
	}

	if ctx.Err() != nil {
		return p.cancelled(log, model.PaymentOutcome{}, ctx.Err())
	}

	ref, err := p.submit(ctx, signer, payload)
	if err != nil {
		if ctx.Err() != nil {
			return p.cancelled(log, model.PaymentOutcome{}, err)
		}
		msg := "Transaction submission failed"
		if isBreakerRejection(err) {
			msg = "Transaction submitter unavailable"
		}
		return p.fail(log, model.PaymentOutcome{}, model.NewPaymentError(model.KindSubmissionFailure, msg, err))
	}
	outcome := model.PaymentOutcome{TxRef: ref}
	p.transition(log, model.PaymentStateSubmitted, slog.String("tx_ref", string(ref)))

	p.transition(log, model.PaymentStateConfirming, slog.Duration("timeout", p.confirmTimeout))
	waitCtx, cancel := context.WithTimeout(ctx, p.confirmTimeout)
	defer cancel()

	confirmations, err := p.confirmer.AwaitConfirmation(waitCtx, ref, p.confirmTimeout)
	switch {
	case ctx.Err() != nil:
		return p.cancelled(log, outcome, ctx.Err())
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || waitCtx.Err() != nil):
		return p.fail(log, outcome, model.NewPaymentError(
			model.KindConfirmationTimeout, "Transaction confirmation timed out", err))
	case err != nil:
		return p.fail(log, outcome, model.NewPaymentError(
			model.KindSubmissionFailure, "Transaction confirmation failed", err))
	case confirmations < 1:
		return p.fail(log, outcome, model.NewPaymentError(
			model.KindConfirmationTimeout, "Transaction confirmation timed out", model.ErrConfirmationTimed))
	}

	outcome.State = model.PaymentStateSucceeded
	outcome.Confirmations = confirmations
	log.Info("payment succeeded",
		slog.String("tx_ref", string(ref)),
		slog.Int("confirmations", confirmations),
	)
	return outcome
}

func (p *Pipeline) submit(ctx context.Context, signer *Signer, payload []byte) (model.TxRef, error) {
	ref, err := signer.Submitter.Submit(ctx, signer.From, p.token, payload)
	if err != nil {
		return "", err
	}
	if ref == "" {
		return "", errors.New("submitter returned an empty transaction reference")
	}
	return ref, nil
}

func (p *Pipeline) transition(log *slog.Logger, state model.PaymentState, attrs ...any) {
	log.Debug("payment state", append([]any{slog.String("state", string(state))}, attrs...)...)
}

func (p *Pipeline) fail(log *slog.Logger, outcome model.PaymentOutcome, perr *model.PaymentError) model.PaymentOutcome {
	outcome.State = model.PaymentStateFailed
	outcome.Error = perr
	log.Warn("payment failed",
		slog.String("kind", string(perr.Kind)),
		slog.String("error", perr.Error()),
		slog.String("tx_ref", string(outcome.TxRef)),
	)
	return outcome
}

func (p *Pipeline) cancelled(log *slog.Logger, outcome model.PaymentOutcome, cause error) model.PaymentOutcome {
	outcome.State = model.PaymentStateCancelled
	outcome.Error = model.NewPaymentError(model.KindCancelled, "Payment cancelled", cause)
	log.Info("payment cancelled", slog.String("tx_ref", string(outcome.TxRef)))
	return outcome
}
