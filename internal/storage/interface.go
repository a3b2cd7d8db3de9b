package storage

import (
	"context"
	"errors"

	"github.com/mcoot/rightsquest/internal/model"
)

// ErrWalletImmutable is returned when an update tries to relink a user's wallet
var ErrWalletImmutable = errors.New("wallet address cannot change in an update")

// UpdateFunc mutates a user in place. Returning an error aborts the update.
type UpdateFunc func(user *model.User) error

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	// SaveUser fails with model.ErrWalletInUse if the wallet belongs to another user
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	// GetUserByWallet matches the wallet address ignoring letter case
	GetUserByWallet(ctx context.Context, wallet string) (*model.User, error)
	DeleteUser(ctx context.Context, id model.UserID) error
	// UpdateUser applies fn atomically with respect to other writers of the same user
	UpdateUser(ctx context.Context, id model.UserID, fn UpdateFunc) (*model.User, error)

	// Receipt operations
	SaveReceipt(ctx context.Context, receipt *model.PaymentReceipt) error
	GetReceipt(ctx context.Context, ref model.TxRef) (*model.PaymentReceipt, error)
	// GetReceiptsForUser returns receipts oldest first
	GetReceiptsForUser(ctx context.Context, userID model.UserID) ([]*model.PaymentReceipt, error)
}
