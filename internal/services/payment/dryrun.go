package payment

import (
	"context"

	"github.com/mcoot/rightsquest/internal/model"
)

// Fixed request used by the dry run
const (
	TestAmount      = "0.01"
	TestRecipient   = "0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6"
	TestDescription = "Test payment for x402 flow"
)

// TestRequest returns the fixed request the dry run validates
func TestRequest() model.PaymentRequest {
	return model.PaymentRequest{
		Amount:      TestAmount,
		Recipient:   TestRecipient,
		Description: TestDescription,
	}
}

// TestPaymentFlow checks that a payment could be made without submitting
// anything: a signer is present and the fixed test request validates.
func (p *Pipeline) TestPaymentFlow(ctx context.Context) model.DryRunResult {
	req := TestRequest()
	result := model.DryRunResult{
		Config:          p.cfg,
		TestPayment:     req,
		WalletConnected: p.Initialized(),
	}

	if err := ctx.Err(); err != nil {
		result.Message = "Test payment flow cancelled"
		return result
	}
	if !result.WalletConnected {
		result.Message = "Wallet client not initialized"
		return result
	}
	if _, _, perr := Validate(req); perr != nil {
		result.Message = "Validation failed: " + perr.Message
		return result
	}

	result.Success = true
	result.Message = "Payment flow test completed successfully"
	p.logger.Debug("payment dry run passed")
	return result
}
