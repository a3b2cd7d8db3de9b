package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/rightsquest/internal/dependencies/clock"
	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/payment"
	"github.com/mcoot/rightsquest/internal/services/progression"
	"github.com/mcoot/rightsquest/internal/services/users"
	"github.com/mcoot/rightsquest/internal/storage"
)

// ActivitySource supplies the streak and quiz history badge rules read
type ActivitySource interface {
	Activity(ctx context.Context, id model.UserID) (model.Activity, error)
}

// ActivityFunc adapts a function to ActivitySource
type ActivityFunc func(ctx context.Context, id model.UserID) (model.Activity, error)

// Activity implements ActivitySource
func (f ActivityFunc) Activity(ctx context.Context, id model.UserID) (model.Activity, error) {
	return f(ctx, id)
}

// NoActivity reports a zero streak and no quiz scores for everyone
var NoActivity ActivitySource = ActivityFunc(func(context.Context, model.UserID) (model.Activity, error) {
	return model.Activity{}, nil
})

// SubmitterFactory returns the submitter a connected wallet signs through
type SubmitterFactory func(from payment.Address) payment.Submitter

// Config holds the payment settings every session pipeline is built with
type Config struct {
	Payment        model.PaymentConfig
	ConfirmTimeout time.Duration
}

// Manager owns the shared dependencies and one Session per user
type Manager struct {
	cfg        Config
	engine     *progression.Engine
	storage    storage.Storage
	users      *users.Service
	confirmer  payment.Confirmer
	submitters SubmitterFactory
	activity   ActivitySource
	clock      clock.Clock
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[model.UserID]*Session
}

// Option configures a Manager
type Option func(*Manager)

// WithActivitySource sets where streaks and quiz scores come from
func WithActivitySource(src ActivitySource) Option {
	return func(m *Manager) {
		if src != nil {
			m.activity = src
		}
	}
}

// NewManager creates a session manager. The payment config is checked here
// so that per-user pipelines cannot fail to build later.
func NewManager(
	cfg Config,
	engine *progression.Engine,
	storage storage.Storage,
	users *users.Service,
	confirmer payment.Confirmer,
	submitters SubmitterFactory,
	clock clock.Clock,
	logger *slog.Logger,
	opts ...Option,
) (*Manager, error) {
	if _, err := payment.New(cfg.Payment, confirmer); err != nil {
		return nil, fmt.Errorf("payment config: %w", err)
	}

	m := &Manager{
		cfg:        cfg,
		engine:     engine,
		storage:    storage,
		users:      users,
		confirmer:  confirmer,
		submitters: submitters,
		activity:   NoActivity,
		clock:      clock,
		logger:     logger,
		sessions:   make(map[model.UserID]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Engine returns the progression engine sessions evaluate against
func (m *Manager) Engine() *progression.Engine {
	return m.engine
}

// PaymentConfig returns the payment settings shared by every session
func (m *Manager) PaymentConfig() model.PaymentConfig {
	return m.cfg.Payment
}

// Connect links the wallet to a user, creating the user if needed, and
// installs the wallet as the signer of that user's session
func (m *Manager) Connect(ctx context.Context, wallet string) (*Session, *model.User, error) {
	user, created, err := m.users.Connect(ctx, wallet)
	if err != nil {
		return nil, nil, err
	}

	sess, err := m.sessionFor(user.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := sess.connect(user.WalletAddress); err != nil {
		return nil, nil, err
	}

	m.logger.Info("wallet connected",
		slog.String("user_id", string(user.ID)),
		slog.Bool("new_user", created),
	)
	return sess, user, nil
}

// Session returns the session of an existing user
func (m *Manager) Session(ctx context.Context, id model.UserID) (*Session, error) {
	if _, err := m.storage.GetUser(ctx, id); err != nil {
		return nil, err
	}
	return m.sessionFor(id)
}

// Disconnect clears the signer of the user's session
func (m *Manager) Disconnect(ctx context.Context, id model.UserID) error {
	sess, err := m.Session(ctx, id)
	if err != nil {
		return err
	}
	sess.Disconnect()
	return nil
}

// Forget drops the user's session and deletes the user
func (m *Manager) Forget(ctx context.Context, id model.UserID) error {
	if err := m.users.Delete(ctx, id); err != nil {
		return err
	}
	m.mu.Lock()
	sess := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if sess != nil {
		sess.Disconnect()
	}
	return nil
}

func (m *Manager) sessionFor(id model.UserID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[id]; ok {
		return sess, nil
	}

	logger := m.logger.With(slog.String("user_id", string(id)))
	pipeline, err := payment.New(m.cfg.Payment, m.confirmer,
		payment.WithLogger(logger),
		payment.WithConfirmTimeout(m.cfg.ConfirmTimeout),
		payment.WithName("session:"+string(id)),
	)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		userID:   id,
		manager:  m,
		pipeline: pipeline,
		logger:   logger,
	}
	m.sessions[id] = sess
	return sess, nil
}
