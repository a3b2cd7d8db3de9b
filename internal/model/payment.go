package model

import "time"

// TxRef is the opaque transaction reference returned by a submitter
type TxRef string

// PaymentRequest is constructed per call and never stored as-is
type PaymentRequest struct {
	// Amount is a human decimal string in display units, e.g. "0.99"
	Amount    string
	Recipient string
	// Description and Metadata are caller-defined; forwarded to logs only
	Description string
	Metadata    map[string]string
}

// PaymentConfig is the immutable per-pipeline network configuration
type PaymentConfig struct {
	ChainID      int64
	TokenAddress string
	RPCURL       string
}

// PaymentState is a phase of a single payment attempt
type PaymentState string

const (
	PaymentStateIdle       PaymentState = "idle"
	PaymentStateValidating PaymentState = "validating"
	PaymentStateEncoding   PaymentState = "encoding"
	PaymentStateSubmitted  PaymentState = "submitted"
	PaymentStateConfirming PaymentState = "confirming"
	PaymentStateSucceeded  PaymentState = "succeeded"
	PaymentStateFailed     PaymentState = "failed"
	PaymentStateCancelled  PaymentState = "cancelled"
)

// PaymentErrorKind is the stable classification of a payment failure
type PaymentErrorKind string

const (
	KindNotInitialized      PaymentErrorKind = "not_initialized"
	KindInvalidAmount       PaymentErrorKind = "invalid_amount"
	KindInvalidRecipient    PaymentErrorKind = "invalid_recipient"
	KindSubmissionFailure   PaymentErrorKind = "submission_failure"
	KindConfirmationTimeout PaymentErrorKind = "confirmation_timeout"
	KindCancelled           PaymentErrorKind = "cancelled"
)

var kindSentinels = map[PaymentErrorKind]error{
	KindNotInitialized:      ErrNotInitialized,
	KindInvalidAmount:       ErrInvalidAmount,
	KindInvalidRecipient:    ErrInvalidRecipient,
	KindSubmissionFailure:   ErrSubmission,
	KindConfirmationTimeout: ErrConfirmationTimed,
	KindCancelled:           ErrCancelled,
}

// PaymentError carries a classification, a human-readable message and the
// underlying cause. errors.Is matches both the kind's sentinel and the cause.
type PaymentError struct {
	Kind    PaymentErrorKind
	Message string
	Err     error
}

// NewPaymentError builds a PaymentError of the given kind
func NewPaymentError(kind PaymentErrorKind, message string, cause error) *PaymentError {
	return &PaymentError{Kind: kind, Message: message, Err: cause}
}

func (e *PaymentError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PaymentError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := kindSentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// PaymentOutcome is the discriminated result of one payment attempt
type PaymentOutcome struct {
	State         PaymentState
	TxRef         TxRef
	Confirmations int
	Error         *PaymentError // nil on success
}

// Succeeded reports whether the attempt reached the succeeded state
func (o PaymentOutcome) Succeeded() bool {
	return o.State == PaymentStateSucceeded
}

// PaymentStatus is the network-side status of a submitted transaction
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentStatusReport answers a status query for a transaction reference
type PaymentStatusReport struct {
	TxRef         TxRef
	Status        PaymentStatus
	Confirmations int
}

// DryRunResult is returned by the non-committing test flow
type DryRunResult struct {
	Success         bool
	Message         string
	Config          PaymentConfig
	TestPayment     PaymentRequest
	WalletConnected bool
}

// PaymentReceipt records a succeeded payment for a user
type PaymentReceipt struct {
	TxRef         TxRef
	UserID        UserID
	Amount        string
	Recipient     string
	Description   string
	Confirmations int
	CreatedAt     time.Time
}
