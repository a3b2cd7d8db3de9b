package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/payment"
)

// SubmitCall records one Submit invocation
type SubmitCall struct {
	From    payment.Address
	To      payment.Address
	Payload []byte
}

// MockSubmitter is a mock implementation of payment.Submitter for testing
type MockSubmitter struct {
	mu    sync.Mutex
	calls []SubmitCall

	// Err is returned from every Submit when set
	Err error
	// Block makes Submit wait until its context is done
	Block bool
}

var _ payment.Submitter = (*MockSubmitter)(nil)

// NewMockSubmitter creates a MockSubmitter that accepts every call
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{}
}

// Submit records the call and returns a deterministic reference
func (m *MockSubmitter) Submit(ctx context.Context, from, to payment.Address, payload []byte) (model.TxRef, error) {
	m.mu.Lock()
	m.calls = append(m.calls, SubmitCall{From: from, To: to, Payload: append([]byte(nil), payload...)})
	n := len(m.calls)
	block, err := m.Block, m.Err
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return model.TxRef(fmt.Sprintf("0x%064x", n)), nil
}

// Calls returns a copy of the recorded calls
func (m *MockSubmitter) Calls() []SubmitCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SubmitCall(nil), m.calls...)
}

// CallCount returns the number of Submit calls
func (m *MockSubmitter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MockConfirmer is a mock implementation of payment.Confirmer for testing
type MockConfirmer struct {
	mu         sync.Mutex
	awaitCalls int
	statuses   map[model.TxRef]model.PaymentStatusReport

	// Confirmations is returned from AwaitConfirmation on success
	Confirmations int
	// Err is returned from AwaitConfirmation when set
	Err error
	// Block makes AwaitConfirmation wait until its context is done
	Block bool
	// StatusErr is returned from Status when set
	StatusErr error
}

var _ payment.Confirmer = (*MockConfirmer)(nil)

// NewMockConfirmer creates a MockConfirmer that confirms once
func NewMockConfirmer() *MockConfirmer {
	return &MockConfirmer{
		Confirmations: 1,
		statuses:      make(map[model.TxRef]model.PaymentStatusReport),
	}
}

// AwaitConfirmation returns the configured result
func (m *MockConfirmer) AwaitConfirmation(ctx context.Context, ref model.TxRef, _ time.Duration) (int, error) {
	m.mu.Lock()
	m.awaitCalls++
	block, err, n := m.Block, m.Err, m.Confirmations
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Status returns the report set with SetStatus, or pending for unknown refs
func (m *MockConfirmer) Status(_ context.Context, ref model.TxRef) (model.PaymentStatusReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StatusErr != nil {
		return model.PaymentStatusReport{}, m.StatusErr
	}
	if report, ok := m.statuses[ref]; ok {
		return report, nil
	}
	return model.PaymentStatusReport{TxRef: ref, Status: model.PaymentStatusPending}, nil
}

// SetStatus sets the report returned for ref
func (m *MockConfirmer) SetStatus(report model.PaymentStatusReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[report.TxRef] = report
}

// AwaitCount returns the number of AwaitConfirmation calls
func (m *MockConfirmer) AwaitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.awaitCalls
}
