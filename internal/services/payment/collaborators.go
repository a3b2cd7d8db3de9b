package payment

import (
	"context"
	"time"

	"github.com/mcoot/rightsquest/internal/model"
)

// Submitter hands a signed call to the network. It may block while the
// wallet asks the user to approve, and must return promptly once ctx is done.
type Submitter interface {
	Submit(ctx context.Context, from, to Address, payload []byte) (model.TxRef, error)
}

// Confirmer observes submitted transactions
type Confirmer interface {
	// AwaitConfirmation blocks until ref has at least one confirmation,
	// timeout elapses, or ctx is done
	AwaitConfirmation(ctx context.Context, ref model.TxRef, timeout time.Duration) (int, error)
	// Status reports the current state of ref without waiting
	Status(ctx context.Context, ref model.TxRef) (model.PaymentStatusReport, error)
}

// Signer is the sender identity plus the capability to submit on its behalf
type Signer struct {
	From      Address
	Submitter Submitter
}
