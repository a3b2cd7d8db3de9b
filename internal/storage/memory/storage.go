package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on the way in and out.
type Storage struct {
	mu sync.RWMutex

	users           map[model.UserID]*model.User
	walletIndex     map[string]model.UserID
	receipts        map[model.TxRef]*model.PaymentReceipt
	receiptsForUser map[model.UserID][]model.TxRef
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:           make(map[model.UserID]*model.User),
		walletIndex:     make(map[string]model.UserID),
		receipts:        make(map[model.TxRef]*model.PaymentReceipt),
		receiptsForUser: make(map[model.UserID][]model.TxRef),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func walletKey(wallet string) string {
	return strings.ToLower(wallet)
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(user)
}

// putLocked stores a copy of user and moves its wallet index entry
func (s *Storage) putLocked(user *model.User) error {
	key := walletKey(user.WalletAddress)
	if owner, ok := s.walletIndex[key]; ok && owner != user.ID {
		return model.ErrWalletInUse
	}
	if prev, ok := s.users[user.ID]; ok && walletKey(prev.WalletAddress) != key {
		delete(s.walletIndex, walletKey(prev.WalletAddress))
	}

	stored := user.Clone()
	s.users[user.ID] = &stored
	if key != "" {
		s.walletIndex[key] = user.ID
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := user.Clone()
	return &out, nil
}

func (s *Storage) GetUserByWallet(ctx context.Context, wallet string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.walletIndex[walletKey(wallet)]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		delete(s.walletIndex, walletKey(user.WalletAddress))
	}
	delete(s.users, id)
	return nil
}

func (s *Storage) UpdateUser(ctx context.Context, id model.UserID, fn storage.UpdateFunc) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		return nil, err
	}
	next.ID = id
	if walletKey(next.WalletAddress) != walletKey(current.WalletAddress) {
		return nil, storage.ErrWalletImmutable
	}
	stored := next.Clone()
	s.users[id] = &stored
	out := next.Clone()
	return &out, nil
}

// Receipt operations

func (s *Storage) SaveReceipt(ctx context.Context, receipt *model.PaymentReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *receipt
	if _, exists := s.receipts[receipt.TxRef]; !exists {
		s.receiptsForUser[receipt.UserID] = append(s.receiptsForUser[receipt.UserID], receipt.TxRef)
	}
	s.receipts[receipt.TxRef] = &stored
	return nil
}

func (s *Storage) GetReceipt(ctx context.Context, ref model.TxRef) (*model.PaymentReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	receipt, ok := s.receipts[ref]
	if !ok {
		return nil, model.ErrReceiptNotFound
	}
	out := *receipt
	return &out, nil
}

func (s *Storage) GetReceiptsForUser(ctx context.Context, userID model.UserID) ([]*model.PaymentReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := s.receiptsForUser[userID]
	out := make([]*model.PaymentReceipt, 0, len(refs))
	for _, ref := range refs {
		r := *s.receipts[ref]
		out = append(out, &r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
