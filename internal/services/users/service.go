package users

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mcoot/rightsquest/internal/dependencies/clock"
	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/payment"
	"github.com/mcoot/rightsquest/internal/storage"
)

// Service links wallets to learner records
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new users Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Connect returns the user linked to wallet, creating one on first sight.
// The boolean reports whether the user was created by this call.
func (s *Service) Connect(ctx context.Context, wallet string) (*model.User, bool, error) {
	addr, err := payment.ParseAddress(wallet)
	if err != nil {
		return nil, false, model.ErrInvalidWallet
	}

	existing, err := s.storage.GetUserByWallet(ctx, addr.Hex())
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, false, err
	}

	now := s.clock.Now()
	user := &model.User{
		ID:               model.UserID(uuid.NewString()),
		WalletAddress:    addr.Checksum(),
		CompletedModules: []model.ModuleID{},
		Badges:           []model.BadgeID{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, model.ErrWalletInUse) {
			// lost a race with another connect for the same wallet
			existing, getErr := s.storage.GetUserByWallet(ctx, addr.Hex())
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	s.logger.Info("user created",
		slog.String("user_id", string(user.ID)),
		slog.String("wallet", user.WalletAddress),
	)
	return user, true, nil
}

// Get retrieves a user by id
func (s *Service) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}

// Delete removes a user and frees their wallet
func (s *Service) Delete(ctx context.Context, id model.UserID) error {
	if _, err := s.storage.GetUser(ctx, id); err != nil {
		return err
	}
	return s.storage.DeleteUser(ctx, id)
}
