package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) newUser(id model.UserID, wallet string) *model.User {
	return &model.User{ID: id, WalletAddress: wallet, CreatedAt: time.Now()}
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := s.newUser("user-1", "0xAbC0000000000000000000000000000000000001")
	user.CompletedModules = []model.ModuleID{"onboarding-basics"}
	user.Score = 100

	err := s.storage.SaveUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(user.WalletAddress, retrieved.WalletAddress)
	s.Equal(100, retrieved.Score)
	s.Equal(user.CompletedModules, retrieved.CompletedModules)
}

func (s *StorageSuite) TestStoredUserIsIsolatedFromCaller() {
	user := s.newUser("user-1", "0x01")
	user.Badges = []model.BadgeID{"first-module"}
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	user.Badges[0] = "tampered"
	retrieved, _ := s.storage.GetUser(s.ctx, "user-1")
	s.Equal(model.BadgeID("first-module"), retrieved.Badges[0])

	retrieved.Score = 999
	again, _ := s.storage.GetUser(s.ctx, "user-1")
	s.Zero(again.Score)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestGetUserByWalletIgnoresCase() {
	_ = s.storage.SaveUser(s.ctx, s.newUser("user-1", "0xAbCdEf0000000000000000000000000000000001"))

	retrieved, err := s.storage.GetUserByWallet(s.ctx, "0xabcdef0000000000000000000000000000000001")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), retrieved.ID)

	_, err = s.storage.GetUserByWallet(s.ctx, "0xother")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestWalletCannotBeClaimedTwice() {
	s.Require().NoError(s.storage.SaveUser(s.ctx, s.newUser("user-1", "0xAA")))

	err := s.storage.SaveUser(s.ctx, s.newUser("user-2", "0xaa"))
	s.ErrorIs(err, model.ErrWalletInUse)

	// re-saving the owner is fine
	s.NoError(s.storage.SaveUser(s.ctx, s.newUser("user-1", "0xAA")))
}

func (s *StorageSuite) TestDeleteUserFreesWallet() {
	_ = s.storage.SaveUser(s.ctx, s.newUser("user-1", "0xAA"))

	err := s.storage.DeleteUser(s.ctx, "user-1")
	s.Require().NoError(err)

	_, err = s.storage.GetUser(s.ctx, "user-1")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.storage.GetUserByWallet(s.ctx, "0xAA")
	s.ErrorIs(err, model.ErrUserNotFound)
	s.NoError(s.storage.SaveUser(s.ctx, s.newUser("user-2", "0xAA")))
}

func (s *StorageSuite) TestUpdateUser() {
	_ = s.storage.SaveUser(s.ctx, s.newUser("user-1", "0xAA"))

	updated, err := s.storage.UpdateUser(s.ctx, "user-1", func(u *model.User) error {
		u.Score += 100
		return nil
	})
	s.Require().NoError(err)
	s.Equal(100, updated.Score)

	retrieved, _ := s.storage.GetUser(s.ctx, "user-1")
	s.Equal(100, retrieved.Score)
}

func (s *StorageSuite) TestUpdateUserAbortsOnError() {
	_ = s.storage.SaveUser(s.ctx, s.newUser("user-1", "0xAA"))
	boom := errors.New("boom")

	_, err := s.storage.UpdateUser(s.ctx, "user-1", func(u *model.User) error {
		u.Score = 42
		return boom
	})
	s.ErrorIs(err, boom)

	retrieved, _ := s.storage.GetUser(s.ctx, "user-1")
	s.Zero(retrieved.Score)
}

func (s *StorageSuite) TestUpdateUserRejectsWalletChange() {
	_ = s.storage.SaveUser(s.ctx, s.newUser("user-1", "0xAA"))

	_, err := s.storage.UpdateUser(s.ctx, "user-1", func(u *model.User) error {
		u.WalletAddress = "0xBB"
		return nil
	})
	s.ErrorIs(err, storage.ErrWalletImmutable)
}

func (s *StorageSuite) TestUpdateUserNotFound() {
	_, err := s.storage.UpdateUser(s.ctx, "ghost", func(u *model.User) error { return nil })
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestConcurrentUpdatesAreSerialised() {
	_ = s.storage.SaveUser(s.ctx, s.newUser("user-1", "0xAA"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.storage.UpdateUser(s.ctx, "user-1", func(u *model.User) error {
				u.Score++
				return nil
			})
		}()
	}
	wg.Wait()

	retrieved, _ := s.storage.GetUser(s.ctx, "user-1")
	s.Equal(50, retrieved.Score)
}

// Receipt tests

func (s *StorageSuite) TestSaveAndGetReceipt() {
	receipt := &model.PaymentReceipt{
		TxRef:         "0xabc",
		UserID:        "user-1",
		Amount:        "0.99",
		Recipient:     "0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6",
		Confirmations: 1,
		CreatedAt:     time.Now(),
	}

	err := s.storage.SaveReceipt(s.ctx, receipt)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetReceipt(s.ctx, "0xabc")
	s.Require().NoError(err)
	s.Equal("0.99", retrieved.Amount)
	s.Equal(model.UserID("user-1"), retrieved.UserID)
}

func (s *StorageSuite) TestGetReceiptNotFound() {
	_, err := s.storage.GetReceipt(s.ctx, "0xmissing")
	s.ErrorIs(err, model.ErrReceiptNotFound)
}

func (s *StorageSuite) TestGetReceiptsForUserOldestFirst() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = s.storage.SaveReceipt(s.ctx, &model.PaymentReceipt{TxRef: "0x2", UserID: "user-1", CreatedAt: base.Add(time.Minute)})
	_ = s.storage.SaveReceipt(s.ctx, &model.PaymentReceipt{TxRef: "0x1", UserID: "user-1", CreatedAt: base})
	_ = s.storage.SaveReceipt(s.ctx, &model.PaymentReceipt{TxRef: "0x3", UserID: "user-2", CreatedAt: base})
	// saving the same ref again does not duplicate it
	_ = s.storage.SaveReceipt(s.ctx, &model.PaymentReceipt{TxRef: "0x1", UserID: "user-1", CreatedAt: base})

	receipts, err := s.storage.GetReceiptsForUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(receipts, 2)
	s.Equal(model.TxRef("0x1"), receipts[0].TxRef)
	s.Equal(model.TxRef("0x2"), receipts[1].TxRef)

	none, err := s.storage.GetReceiptsForUser(s.ctx, "user-3")
	s.Require().NoError(err)
	s.Empty(none)
}
