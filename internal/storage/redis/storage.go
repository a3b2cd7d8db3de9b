package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxUpdateRetries <= 0 {
		cfg.MaxUpdateRetries = DefaultConfig().MaxUpdateRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	key := userKey(user.ID)
	idxKey := walletIndexKey(user.WalletAddress)

	// WATCH the index so two users cannot claim the same wallet
	return s.retry(func() error {
		return s.client.Watch(ctx, func(tx *redis.Tx) error {
			owner, err := tx.Get(ctx, idxKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if owner != "" && owner != string(user.ID) {
				return model.ErrWalletInUse
			}
			prevWallet, err := s.walletOf(ctx, tx, user.ID)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if prevWallet != "" && !strings.EqualFold(prevWallet, user.WalletAddress) {
					pipe.Del(ctx, walletIndexKey(prevWallet))
				}
				pipe.Set(ctx, key, data, s.cfg.UserTTL)
				if user.WalletAddress != "" {
					pipe.Set(ctx, idxKey, string(user.ID), s.cfg.UserTTL)
				}
				return nil
			})
			return err
		}, idxKey, key)
	})
}

// walletOf returns the wallet currently stored for id, or "" if none
func (s *Storage) walletOf(ctx context.Context, tx *redis.Tx, id model.UserID) (string, error) {
	data, err := tx.Get(ctx, userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var prev model.User
	if err := json.Unmarshal(data, &prev); err != nil {
		return "", err
	}
	return prev.WalletAddress, nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByWallet(ctx context.Context, wallet string) (*model.User, error) {
	// Look up user ID from wallet index
	id, err := s.client.Get(ctx, walletIndexKey(wallet)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(id))
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	user, err := s.GetUser(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, userKey(id))
	if user.WalletAddress != "" {
		pipe.Del(ctx, walletIndexKey(user.WalletAddress))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) UpdateUser(ctx context.Context, id model.UserID, fn storage.UpdateFunc) (*model.User, error) {
	key := userKey(id)
	var updated *model.User

	err := s.retry(func() error {
		return s.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return model.ErrUserNotFound
				}
				return err
			}

			var user model.User
			if err := json.Unmarshal(data, &user); err != nil {
				return err
			}
			wallet := user.WalletAddress
			if err := fn(&user); err != nil {
				return err
			}
			user.ID = id
			if !strings.EqualFold(wallet, user.WalletAddress) {
				return storage.ErrWalletImmutable
			}

			encoded, err := json.Marshal(&user)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, s.cfg.UserTTL)
				return nil
			})
			if err == nil {
				updated = &user
			}
			return err
		}, key)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// retry reruns fn while its optimistic transaction loses a race
func (s *Storage) retry(fn func() error) error {
	for attempt := 0; attempt < s.cfg.MaxUpdateRetries; attempt++ {
		err := fn()
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return model.ErrUpdateConflict
}

// Receipt operations

func (s *Storage) SaveReceipt(ctx context.Context, receipt *model.PaymentReceipt) error {
	data, err := json.Marshal(receipt)
	if err != nil {
		return err
	}

	indexKey := receiptsForUserIndexKey(receipt.UserID)

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, receiptKey(receipt.TxRef), data, s.cfg.ReceiptTTL)
	pipe.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(receipt.CreatedAt.UnixMilli()),
		Member: string(receipt.TxRef),
	})
	if s.cfg.ReceiptTTL > 0 {
		pipe.Expire(ctx, indexKey, s.cfg.ReceiptTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetReceipt(ctx context.Context, ref model.TxRef) (*model.PaymentReceipt, error) {
	data, err := s.client.Get(ctx, receiptKey(ref)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrReceiptNotFound
		}
		return nil, err
	}

	var receipt model.PaymentReceipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (s *Storage) GetReceiptsForUser(ctx context.Context, userID model.UserID) ([]*model.PaymentReceipt, error) {
	refs, err := s.client.ZRange(ctx, receiptsForUserIndexKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(refs) == 0 {
		return []*model.PaymentReceipt{}, nil
	}

	keys := make([]string, len(refs))
	for i, ref := range refs {
		keys[i] = receiptKey(model.TxRef(ref))
	}

	// Fetch all receipts in one round trip using MGET
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	receipts := make([]*model.PaymentReceipt, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Receipt may have expired
		}
		str, ok := val.(string)
		if !ok {
			continue
		}
		var receipt model.PaymentReceipt
		if err := json.Unmarshal([]byte(str), &receipt); err != nil {
			continue // Skip invalid data
		}
		receipts = append(receipts, &receipt)
	}

	return receipts, nil
}
