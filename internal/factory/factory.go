package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/rightsquest/internal/catalog"
	"github.com/mcoot/rightsquest/internal/chain"
	"github.com/mcoot/rightsquest/internal/config"
	"github.com/mcoot/rightsquest/internal/dependencies/clock"
	"github.com/mcoot/rightsquest/internal/dependencies/random"
	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/payment"
	"github.com/mcoot/rightsquest/internal/services/progression"
	"github.com/mcoot/rightsquest/internal/services/session"
	"github.com/mcoot/rightsquest/internal/services/users"
	"github.com/mcoot/rightsquest/internal/storage"
	"github.com/mcoot/rightsquest/internal/storage/memory"
	redisstorage "github.com/mcoot/rightsquest/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Chain  *chain.Simulator

	// Services
	Catalog     *catalog.Catalog
	Engine      *progression.Engine
	UserService *users.Service
	Sessions    *session.Manager
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Payment is the network configuration for every session pipeline
	// If zero value, Base mainnet USDC is used
	Payment model.PaymentConfig
	// ConfirmTimeout bounds each confirmation wait (optional)
	ConfirmTimeout time.Duration
	// ConfirmDelay is how long the simulated ledger takes to confirm (optional)
	ConfirmDelay time.Duration
	// Activity supplies streak and quiz history (optional)
	Activity session.ActivitySource
	// Breaker guards submissions to the ledger (optional)
	// If zero value, payment.DefaultBreakerConfig is used
	Breaker payment.BreakerConfig
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageTypeMemory
	}

	switch storageType {
	case config.StorageTypeMemory:
		store = memory.New()
	case config.StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg, logger)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	if cfg.Payment == (model.PaymentConfig{}) {
		cfg.Payment = model.PaymentConfig{
			ChainID:      config.DefaultChainID,
			TokenAddress: config.DefaultTokenAddress,
			RPCURL:       config.DefaultRPCURL,
		}
	}

	// The built-in catalog is validated here so a bad table fails at startup
	cat := catalog.Default()

	sim := chain.NewSimulator(chain.Config{ConfirmDelay: cfg.ConfirmDelay}, clk, rnd, logger.With(slog.String("component", "chain")))
	submitter := payment.NewBreakerSubmitter(sim, "chain", cfg.Breaker, logger)
	engine := progression.New(cat, clk, logger)
	userService := users.New(store, clk, logger)

	var opts []session.Option
	if cfg.Activity != nil {
		opts = append(opts, session.WithActivitySource(cfg.Activity))
	}
	sessions, err := session.NewManager(
		session.Config{Payment: cfg.Payment, ConfirmTimeout: cfg.ConfirmTimeout},
		engine,
		store,
		userService,
		sim,
		func(payment.Address) payment.Submitter { return submitter },
		clk,
		logger,
		opts...,
	)
	if err != nil {
		return nil, err
	}

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Chain:       sim,
		Catalog:     cat,
		Engine:      engine,
		UserService: userService,
		Sessions:    sessions,
	}, nil
}
