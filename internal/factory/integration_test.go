package factory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rightsquest/internal/catalog"
	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/payment"
)

const wallet = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: a learner connects, works through every module and buys content
func (s *IntegrationSuite) TestCompleteLearnerJourney() {
	// Step 1: Connect a wallet
	sess, user, err := s.app.Sessions.Connect(s.ctx, wallet)
	s.Require().NoError(err)
	s.True(sess.State().Connected)

	// Step 2: The dependent module is locked until the root is done
	_, _, err = sess.StartModule(s.ctx, catalog.DisputeModuleID)
	s.ErrorIs(err, model.ErrModuleLocked)

	// Step 3: Complete all modules in order
	for _, id := range []model.ModuleID{catalog.BasicsModuleID, catalog.DisputeModuleID, catalog.AdvancedModuleID} {
		_, _, err := sess.StartModule(s.ctx, id)
		s.Require().NoError(err, id)
	}

	stats, err := sess.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(450, stats.TotalScore)
	s.Equal(3, stats.Level)
	s.Equal("Informed", stats.Rank)
	s.Equal(100, stats.ProgressPercent)
	s.Equal(4, stats.BadgesEarned)

	// Step 4: Dry run, then a real payment
	dry := sess.TestPaymentFlow(s.ctx)
	s.True(dry.Success)
	s.Zero(s.app.Chain.Transactions())

	outcome := sess.Pay(s.ctx, model.PaymentRequest{
		Amount:    "0.99",
		Recipient: payment.TestRecipient,
	})
	s.Require().True(outcome.Succeeded(), "outcome: %+v", outcome)
	s.Equal(1, s.app.Chain.Transactions())

	report, err := sess.PaymentStatus(s.ctx, outcome.TxRef)
	s.Require().NoError(err)
	s.Equal(model.PaymentStatusConfirmed, report.Status)

	receipts, err := s.app.Storage.GetReceiptsForUser(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Len(receipts, 1)

	// Step 5: Disconnect and reconnect keeps progress
	s.Require().NoError(s.app.Sessions.Disconnect(s.ctx, user.ID))
	s.Equal(model.KindNotInitialized, sess.Pay(s.ctx, model.PaymentRequest{Amount: "1", Recipient: payment.TestRecipient}).Error.Kind)

	_, again, err := s.app.Sessions.Connect(s.ctx, wallet)
	s.Require().NoError(err)
	s.Equal(user.ID, again.ID)
	s.Equal(450, again.Score)
}

// Test: the simulated ledger honours its confirmation delay against the clock
func (s *IntegrationSuite) TestSlowLedgerTimesOut() {
	app := NewTestAppWithConfig(Config{ConfirmDelay: time.Hour, ConfirmTimeout: 30 * time.Millisecond})
	sess, _, err := app.Sessions.Connect(s.ctx, wallet)
	s.Require().NoError(err)

	outcome := sess.Pay(s.ctx, payment.TestRequest())

	s.Equal(model.PaymentStateFailed, outcome.State)
	s.Equal(model.KindConfirmationTimeout, outcome.Error.Kind)
	s.Equal(model.PaymentStatusPending, mustStatus(s, app, outcome.TxRef))

	app.MockClock.Advance(time.Hour)
	s.Equal(model.PaymentStatusConfirmed, mustStatus(s, app, outcome.TxRef))
}

// Test: a wallet rejection surfaces as a submission failure
func (s *IntegrationSuite) TestRejectedSubmission() {
	s.app.Chain.SetRejecter(func(_, _ payment.Address, _ []byte) error {
		return errors.New("user denied transaction signature")
	})
	sess, _, err := s.app.Sessions.Connect(s.ctx, wallet)
	s.Require().NoError(err)

	outcome := sess.Pay(s.ctx, payment.TestRequest())

	s.Equal(model.KindSubmissionFailure, outcome.Error.Kind)
	s.Contains(outcome.Error.Error(), "user denied")
}

func (s *IntegrationSuite) TestNewRejectsUnknownStorage() {
	_, err := New(Config{StorageType: "postgres"})
	s.Error(err)

	_, err = New(Config{StorageType: "redis"})
	s.Error(err)

	app, err := New(Config{})
	s.Require().NoError(err)
	s.NotNil(app.Sessions)
	s.Equal(int64(8453), app.Sessions.PaymentConfig().ChainID)
}

func mustStatus(s *IntegrationSuite, app *TestApp, ref model.TxRef) model.PaymentStatus {
	report, err := app.Chain.Status(s.ctx, ref)
	s.Require().NoError(err)
	return report.Status
}
