package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/payment"
	"github.com/mcoot/rightsquest/internal/services/progression"
)

// Operation names recorded in OperationError
const (
	OpPay         = "pay"
	OpTestPayment = "test_payment"
	OpStatus      = "payment_status"
	OpStartModule = "start_module"
	OpConnect     = "connect"
	OpDisconnect  = "disconnect"
)

// Kinds for failures that are not payment failures
const (
	KindModuleNotFound = "module_not_found"
	KindModuleLocked   = "module_locked"
	KindDryRunFailed   = "dry_run_failed"
	KindInvalidTxRef   = "invalid_tx_ref"
	KindInternal       = "internal"
)

// OperationError is the classification and message of the last failure
type OperationError struct {
	Operation string
	Kind      string
	Message   string
}

func (e *OperationError) Error() string {
	return e.Operation + ": " + e.Message
}

// State is the transient status shown while operations run
type State struct {
	Loading   bool
	InFlight  int
	Connected bool
	LastError *OperationError
}

// Session is one user's entry point into payments and progression.
// Operations may overlap; State tracks how many are running.
type Session struct {
	userID   model.UserID
	manager  *Manager
	pipeline *payment.Pipeline
	logger   *slog.Logger

	mu        sync.Mutex
	inFlight  int
	lastError *OperationError
}

// UserID returns the user the session belongs to
func (s *Session) UserID() model.UserID {
	return s.userID
}

// State returns a snapshot of the session's loading and error state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		Loading:   s.inFlight > 0,
		InFlight:  s.inFlight,
		Connected: s.pipeline.Initialized(),
	}
	if s.lastError != nil {
		e := *s.lastError
		state.LastError = &e
	}
	return state
}

// begin marks an operation as running and clears the previous error.
// The returned func ends it, recording err if non-nil.
func (s *Session) begin() func(err *OperationError) {
	s.mu.Lock()
	s.inFlight++
	s.lastError = nil
	s.mu.Unlock()

	return func(err *OperationError) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.inFlight--
		if err != nil {
			s.lastError = err
		}
	}
}

func (s *Session) connect(wallet string) error {
	end := s.begin()

	from, err := payment.ParseAddress(wallet)
	if err == nil {
		err = s.pipeline.Initialize(payment.Signer{
			From:      from,
			Submitter: s.manager.submitters(from),
		})
	}
	if err != nil {
		end(&OperationError{Operation: OpConnect, Kind: KindInternal, Message: err.Error()})
		return err
	}
	end(nil)
	return nil
}

// Disconnect removes the wallet signer. Later payments fail as not initialized.
func (s *Session) Disconnect() {
	end := s.begin()
	s.pipeline.Reset()
	end(nil)
}

// Pay runs a payment and records a receipt when it succeeds
func (s *Session) Pay(ctx context.Context, req model.PaymentRequest) model.PaymentOutcome {
	end := s.begin()

	outcome := s.pipeline.Pay(ctx, req)
	if !outcome.Succeeded() {
		end(&OperationError{Operation: OpPay, Kind: string(outcome.Error.Kind), Message: outcome.Error.Message})
		return outcome
	}

	receipt := &model.PaymentReceipt{
		TxRef:         outcome.TxRef,
		UserID:        s.userID,
		Amount:        req.Amount,
		Recipient:     req.Recipient,
		Description:   req.Description,
		Confirmations: outcome.Confirmations,
		CreatedAt:     s.manager.clock.Now(),
	}
	// the transfer already happened, so a storage failure does not change the outcome
	if err := s.manager.storage.SaveReceipt(context.WithoutCancel(ctx), receipt); err != nil {
		s.logger.Error("failed to save payment receipt",
			slog.String("tx_ref", string(outcome.TxRef)),
			slog.String("error", err.Error()),
		)
	}
	end(nil)
	return outcome
}

// TestPaymentFlow runs the non-committing dry run
func (s *Session) TestPaymentFlow(ctx context.Context) model.DryRunResult {
	end := s.begin()

	result := s.pipeline.TestPaymentFlow(ctx)
	if !result.Success {
		end(&OperationError{Operation: OpTestPayment, Kind: KindDryRunFailed, Message: result.Message})
		return result
	}
	end(nil)
	return result
}

// PaymentStatus queries a submitted transaction
func (s *Session) PaymentStatus(ctx context.Context, ref model.TxRef) (model.PaymentStatusReport, error) {
	end := s.begin()

	report, err := s.pipeline.PaymentStatus(ctx, ref)
	if err != nil {
		kind := KindInternal
		switch {
		case errors.Is(err, model.ErrNotInitialized):
			kind = string(model.KindNotInitialized)
		case errors.Is(err, model.ErrInvalidTxRef):
			kind = KindInvalidTxRef
		}
		end(&OperationError{Operation: OpStatus, Kind: kind, Message: err.Error()})
		return report, err
	}
	end(nil)
	return report, nil
}

// StartModule completes a module for the user if it is unlocked. The user
// record is replaced in one atomic update.
func (s *Session) StartModule(ctx context.Context, id model.ModuleID) (*model.User, progression.Completion, error) {
	end := s.begin()

	fail := func(err error) (*model.User, progression.Completion, error) {
		kind := KindInternal
		switch {
		case errors.Is(err, model.ErrModuleNotFound):
			kind = KindModuleNotFound
		case errors.Is(err, model.ErrModuleLocked):
			kind = KindModuleLocked
		}
		end(&OperationError{Operation: OpStartModule, Kind: kind, Message: err.Error()})
		return nil, progression.Completion{}, err
	}

	activity, err := s.manager.activity.Activity(ctx, s.userID)
	if err != nil {
		return fail(err)
	}

	var completion progression.Completion
	user, err := s.manager.storage.UpdateUser(ctx, s.userID, func(u *model.User) error {
		next, c, err := s.manager.engine.StartModule(id, *u, activity)
		if err != nil {
			return err
		}
		*u = next
		completion = c
		return nil
	})
	if err != nil {
		return fail(err)
	}

	if !completion.AlreadyCompleted {
		s.logger.Info("module completed",
			slog.String("module_id", string(id)),
			slog.Int("points", completion.PointsAwarded),
			slog.Int("badges_awarded", len(completion.BadgesAwarded)),
		)
	}
	end(nil)
	return user, completion, nil
}

// Stats computes the user's game stats from the stored record
func (s *Session) Stats(ctx context.Context) (model.GameStats, error) {
	user, activity, err := s.load(ctx)
	if err != nil {
		return model.GameStats{}, err
	}
	return s.manager.engine.ComputeStats(*user, activity), nil
}

// Modules annotates the catalog with the user's lock and completion state
func (s *Session) Modules(ctx context.Context) ([]progression.ModuleStatus, error) {
	user, err := s.manager.storage.GetUser(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	return s.manager.engine.ModuleStatuses(*user), nil
}

// NextBadge returns the next badge to aim for, or nil when all are earned
func (s *Session) NextBadge(ctx context.Context) (*model.Badge, error) {
	user, err := s.manager.storage.GetUser(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	return s.manager.engine.NextBadge(*user), nil
}

// Receipts lists the user's successful payments, oldest first
func (s *Session) Receipts(ctx context.Context) ([]*model.PaymentReceipt, error) {
	return s.manager.storage.GetReceiptsForUser(ctx, s.userID)
}

func (s *Session) load(ctx context.Context) (*model.User, model.Activity, error) {
	user, err := s.manager.storage.GetUser(ctx, s.userID)
	if err != nil {
		return nil, model.Activity{}, err
	}
	activity, err := s.manager.activity.Activity(ctx, s.userID)
	if err != nil {
		return nil, model.Activity{}, err
	}
	return user, activity, nil
}
