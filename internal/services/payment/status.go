package payment

import (
	"context"
	"strings"

	"github.com/mcoot/rightsquest/internal/model"
)

// PaymentStatus asks the confirmer about a previously submitted transaction
func (p *Pipeline) PaymentStatus(ctx context.Context, ref model.TxRef) (model.PaymentStatusReport, error) {
	if !p.Initialized() {
		return model.PaymentStatusReport{}, model.ErrNotInitialized
	}
	if strings.TrimSpace(string(ref)) == "" {
		return model.PaymentStatusReport{}, model.ErrInvalidTxRef
	}
	return p.confirmer.Status(ctx, ref)
}
