// Package chain provides an in-process stand-in for the payment network.
// It accepts transfer payloads, hands out transaction references and confirms
// them once a fixed delay has passed on the injected clock.
package chain

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mcoot/rightsquest/internal/dependencies/clock"
	"github.com/mcoot/rightsquest/internal/dependencies/random"
	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/payment"
)

const saltLength = 16

var (
	// ErrUnknownTx is returned when waiting on a reference never submitted here
	ErrUnknownTx = errors.New("unknown transaction")
	// ErrMalformedPayload is returned for payloads that are not transfer calls
	ErrMalformedPayload = errors.New("malformed transfer payload")
)

// Config controls simulated network timing
type Config struct {
	// ConfirmDelay is how long after submission a transaction confirms
	ConfirmDelay time.Duration
	// PollInterval is the first wait between confirmation checks
	PollInterval time.Duration
	// MaxPollInterval caps the exponential backoff between checks
	MaxPollInterval time.Duration
}

// DefaultConfig returns the default simulator timing
func DefaultConfig() Config {
	return Config{
		ConfirmDelay:    3 * time.Second,
		PollInterval:    50 * time.Millisecond,
		MaxPollInterval: time.Second,
	}
}

// Rejecter decides whether a submission is refused. A non-nil error refuses it.
type Rejecter func(from, to payment.Address, payload []byte) error

type transaction struct {
	from        payment.Address
	to          payment.Address
	payload     []byte
	submittedAt time.Time
}

// Simulator implements payment.Submitter and payment.Confirmer
type Simulator struct {
	mu       sync.RWMutex
	txs      map[model.TxRef]*transaction
	rejecter Rejecter
	nonce    uint64

	cfg    Config
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

var (
	_ payment.Submitter = (*Simulator)(nil)
	_ payment.Confirmer = (*Simulator)(nil)
)

// NewSimulator creates a simulator. Zero config fields take their defaults.
func NewSimulator(cfg Config, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Simulator {
	def := DefaultConfig()
	if cfg.ConfirmDelay < 0 {
		cfg.ConfirmDelay = 0
	} else if cfg.ConfirmDelay == 0 {
		cfg.ConfirmDelay = def.ConfirmDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.MaxPollInterval <= 0 {
		cfg.MaxPollInterval = def.MaxPollInterval
	}

	return &Simulator{
		txs:    make(map[model.TxRef]*transaction),
		cfg:    cfg,
		clock:  clk,
		random: rnd,
		logger: logger,
	}
}

// SetRejecter installs a hook that can refuse submissions, or clears it with nil
func (s *Simulator) SetRejecter(fn Rejecter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejecter = fn
}

// Submit records a transfer and returns its reference
func (s *Simulator) Submit(ctx context.Context, from, to payment.Address, payload []byte) (model.TxRef, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(payload) != payment.TransferPayloadLength {
		return "", fmt.Errorf("%w: %d bytes", ErrMalformedPayload, len(payload))
	}

	s.mu.RLock()
	rejecter := s.rejecter
	s.mu.RUnlock()
	if rejecter != nil {
		if err := rejecter(from, to, payload); err != nil {
			return "", err
		}
	}

	salt := s.random.Bytes(saltLength)

	s.mu.Lock()
	s.nonce++
	nonce := binary.BigEndian.AppendUint64(nil, s.nonce)
	ref := model.TxRef("0x" + hex.EncodeToString(payment.Keccak256(from[:], to[:], payload, nonce, salt)))
	s.txs[ref] = &transaction{
		from:        from,
		to:          to,
		payload:     append([]byte(nil), payload...),
		submittedAt: s.clock.Now(),
	}
	s.mu.Unlock()

	s.logger.Debug("transaction submitted",
		slog.String("tx_ref", string(ref)),
		slog.String("from", from.Checksum()),
		slog.String("to", to.Checksum()),
	)
	return ref, nil
}

// AwaitConfirmation polls with capped exponential backoff until ref confirms
func (s *Simulator) AwaitConfirmation(ctx context.Context, ref model.TxRef, timeout time.Duration) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return backoff.RetryWithData(func() (int, error) {
		report, known := s.report(ref)
		if !known {
			return 0, backoff.Permanent(fmt.Errorf("%w: %s", ErrUnknownTx, ref))
		}
		if report.Status != model.PaymentStatusConfirmed {
			return 0, errPending
		}
		return report.Confirmations, nil
	}, newPollBackOff(ctx, s.cfg))
}

// Status reports the current state of ref. Unknown references report failed.
func (s *Simulator) Status(ctx context.Context, ref model.TxRef) (model.PaymentStatusReport, error) {
	if err := ctx.Err(); err != nil {
		return model.PaymentStatusReport{}, err
	}
	report, known := s.report(ref)
	if !known {
		return model.PaymentStatusReport{TxRef: ref, Status: model.PaymentStatusFailed}, nil
	}
	return report, nil
}

// Transactions returns the number of accepted submissions
func (s *Simulator) Transactions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

func (s *Simulator) report(ref model.TxRef) (model.PaymentStatusReport, bool) {
	s.mu.RLock()
	tx, ok := s.txs[ref]
	s.mu.RUnlock()
	if !ok {
		return model.PaymentStatusReport{}, false
	}

	if s.clock.Since(tx.submittedAt) < s.cfg.ConfirmDelay {
		return model.PaymentStatusReport{TxRef: ref, Status: model.PaymentStatusPending}, true
	}
	return model.PaymentStatusReport{TxRef: ref, Status: model.PaymentStatusConfirmed, Confirmations: 1}, true
}
