package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rightsquest/internal/catalog"
	"github.com/mcoot/rightsquest/internal/chain"
	"github.com/mcoot/rightsquest/internal/dependencies/mocks"
	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/payment"
	"github.com/mcoot/rightsquest/internal/services/progression"
	"github.com/mcoot/rightsquest/internal/services/users"
	"github.com/mcoot/rightsquest/internal/storage/memory"
	"github.com/mcoot/rightsquest/internal/testutil"
)

const (
	wallet    = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	recipient = "0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6"
)

type SessionSuite struct {
	suite.Suite
	storage   *memory.Storage
	clock     *mocks.MockClock
	sim       *chain.Simulator
	submitter payment.Submitter
	activity  model.Activity
	manager   *Manager
	ctx       context.Context
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.ctx = context.Background()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.sim = chain.NewSimulator(chain.Config{ConfirmDelay: -1, PollInterval: time.Millisecond}, s.clock, mocks.NewMockRandom(), logger)
	s.submitter = s.sim
	s.activity = model.Activity{}
	s.manager = s.newManager(s.sim)
}

func (s *SessionSuite) newManager(confirmer payment.Confirmer) *Manager {
	logger := testutil.NopLogger()
	engine := progression.New(catalog.Default(), s.clock, logger)
	userService := users.New(s.storage, s.clock, logger)
	cfg := Config{
		Payment: model.PaymentConfig{
			ChainID:      8453,
			TokenAddress: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		},
		ConfirmTimeout: time.Second,
	}
	submitters := func(payment.Address) payment.Submitter { return s.submitter }
	activity := ActivityFunc(func(context.Context, model.UserID) (model.Activity, error) {
		return s.activity, nil
	})

	m, err := NewManager(cfg, engine, s.storage, userService, confirmer, submitters, s.clock, logger,
		WithActivitySource(activity))
	s.Require().NoError(err)
	return m
}

func (s *SessionSuite) connect() (*Session, *model.User) {
	sess, user, err := s.manager.Connect(s.ctx, wallet)
	s.Require().NoError(err)
	return sess, user
}

func (s *SessionSuite) request() model.PaymentRequest {
	return model.PaymentRequest{Amount: "0.99", Recipient: recipient, Description: "Premium module"}
}

func (s *SessionSuite) TestNewManagerRejectsBadPaymentConfig() {
	_, err := NewManager(Config{Payment: model.PaymentConfig{TokenAddress: "0xnope"}},
		nil, s.storage, nil, s.sim, nil, s.clock, testutil.NopLogger())
	s.Error(err)
}

func (s *SessionSuite) TestConnectInstallsSigner() {
	sess, user := s.connect()

	s.Equal(user.ID, sess.UserID())
	state := sess.State()
	s.True(state.Connected)
	s.False(state.Loading)
	s.Nil(state.LastError)

	again, _ := s.connect()
	s.Same(sess, again)
}

func (s *SessionSuite) TestSessionForUnknownUser() {
	_, err := s.manager.Session(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Payment tests

func (s *SessionSuite) TestPayStoresReceipt() {
	sess, user := s.connect()

	outcome := sess.Pay(s.ctx, s.request())
	s.Require().True(outcome.Succeeded(), "outcome: %+v", outcome)

	receipts, err := sess.Receipts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(receipts, 1)
	s.Equal(outcome.TxRef, receipts[0].TxRef)
	s.Equal(user.ID, receipts[0].UserID)
	s.Equal("0.99", receipts[0].Amount)

	report, err := sess.PaymentStatus(s.ctx, outcome.TxRef)
	s.Require().NoError(err)
	s.Equal(model.PaymentStatusConfirmed, report.Status)
}

func (s *SessionSuite) TestFailedPayRecordsLastError() {
	sess, _ := s.connect()

	req := s.request()
	req.Amount = "abc"
	outcome := sess.Pay(s.ctx, req)

	s.Equal(model.PaymentStateFailed, outcome.State)
	state := sess.State()
	s.Require().NotNil(state.LastError)
	s.Equal(OpPay, state.LastError.Operation)
	s.Equal(string(model.KindInvalidAmount), state.LastError.Kind)
	s.Equal("Invalid payment amount", state.LastError.Message)

	receipts, _ := sess.Receipts(s.ctx)
	s.Empty(receipts)

	// the next operation starts with a clean slate
	s.True(sess.Pay(s.ctx, s.request()).Succeeded())
	s.Nil(sess.State().LastError)
}

func (s *SessionSuite) TestDisconnectClearsLastError() {
	sess, user := s.connect()
	sess.Pay(s.ctx, model.PaymentRequest{Amount: "abc", Recipient: recipient})
	s.Require().NotNil(sess.State().LastError)

	s.Require().NoError(s.manager.Disconnect(s.ctx, user.ID))

	state := sess.State()
	s.Nil(state.LastError)
	s.False(state.Loading)
	s.False(state.Connected)
}

func (s *SessionSuite) TestDisconnectBlocksPayments() {
	sess, user := s.connect()
	s.Require().NoError(s.manager.Disconnect(s.ctx, user.ID))

	outcome := sess.Pay(s.ctx, s.request())

	s.Require().NotNil(outcome.Error)
	s.Equal(model.KindNotInitialized, outcome.Error.Kind)
	s.False(sess.State().Connected)
	s.Zero(s.sim.Transactions())
}

func (s *SessionSuite) TestLoadingWhileInFlight() {
	blocking := mocks.NewMockSubmitter()
	blocking.Block = true
	s.submitter = blocking
	sess, _ := s.connect()

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan model.PaymentOutcome, 1)
	go func() { done <- sess.Pay(ctx, s.request()) }()

	s.Eventually(func() bool { return blocking.CallCount() == 1 }, time.Second, time.Millisecond)
	state := sess.State()
	s.True(state.Loading)
	s.Equal(1, state.InFlight)

	cancel()
	outcome := <-done

	s.Equal(model.PaymentStateCancelled, outcome.State)
	state = sess.State()
	s.False(state.Loading)
	s.Require().NotNil(state.LastError)
	s.Equal(string(model.KindCancelled), state.LastError.Kind)
}

func (s *SessionSuite) TestDryRun() {
	sess, user := s.connect()

	result := sess.TestPaymentFlow(s.ctx)
	s.True(result.Success)
	s.True(result.WalletConnected)
	s.Zero(s.sim.Transactions())

	_ = s.manager.Disconnect(s.ctx, user.ID)
	result = sess.TestPaymentFlow(s.ctx)
	s.False(result.Success)
	s.Require().NotNil(sess.State().LastError)
	s.Equal(KindDryRunFailed, sess.State().LastError.Kind)
}

func (s *SessionSuite) TestPaymentStatusErrors() {
	sess, _ := s.connect()

	_, err := sess.PaymentStatus(s.ctx, "")
	s.ErrorIs(err, model.ErrInvalidTxRef)
	s.Equal(KindInvalidTxRef, sess.State().LastError.Kind)

	report, err := sess.PaymentStatus(s.ctx, "0xunknown")
	s.Require().NoError(err)
	s.Equal(model.PaymentStatusFailed, report.Status)
}

// Progression tests

func (s *SessionSuite) TestStartModulePersists() {
	sess, user := s.connect()

	updated, completion, err := sess.StartModule(s.ctx, catalog.BasicsModuleID)
	s.Require().NoError(err)
	s.Equal(100, updated.Score)
	s.Equal(100, completion.PointsAwarded)

	stored, _ := s.storage.GetUser(s.ctx, user.ID)
	s.Equal(100, stored.Score)
	s.True(stored.HasBadge(catalog.BadgeFirstModule))
}

func (s *SessionSuite) TestStartLockedModule() {
	sess, _ := s.connect()

	_, _, err := sess.StartModule(s.ctx, catalog.AdvancedModuleID)
	s.ErrorIs(err, model.ErrModuleLocked)
	s.Equal(KindModuleLocked, sess.State().LastError.Kind)

	_, _, err = sess.StartModule(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrModuleNotFound)
	s.Equal(KindModuleNotFound, sess.State().LastError.Kind)
}

func (s *SessionSuite) TestConcurrentStartsAwardOnce() {
	sess, user := s.connect()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = sess.StartModule(s.ctx, catalog.BasicsModuleID)
		}()
	}
	wg.Wait()

	stored, _ := s.storage.GetUser(s.ctx, user.ID)
	s.Equal(100, stored.Score)
	s.Len(stored.CompletedModules, 1)
	s.Len(stored.Badges, 2)
	s.Zero(sess.State().InFlight)
}

func (s *SessionSuite) TestStatsUseActivitySource() {
	s.activity = model.Activity{StreakDays: 7}
	sess, _ := s.connect()

	_, completion, err := sess.StartModule(s.ctx, catalog.BasicsModuleID)
	s.Require().NoError(err)
	s.Contains(completion.BadgesAwarded, catalog.BadgeWeekStreak)

	stats, err := sess.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(7, stats.Streak)
	s.Equal(100, stats.TotalScore)
	s.Equal("Learner", stats.Rank)
}

func (s *SessionSuite) TestModulesAndNextBadge() {
	sess, _ := s.connect()
	_, _, _ = sess.StartModule(s.ctx, catalog.BasicsModuleID)

	modules, err := sess.Modules(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(modules, 3)
	s.True(modules[1].Unlocked)

	next, err := sess.NextBadge(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(next)
	s.Equal(catalog.BadgeWeekStreak, next.ID)
}

func (s *SessionSuite) TestForget() {
	_, user := s.connect()

	s.Require().NoError(s.manager.Forget(s.ctx, user.ID))
	_, err := s.manager.Session(s.ctx, user.ID)
	s.ErrorIs(err, model.ErrUserNotFound)
}
