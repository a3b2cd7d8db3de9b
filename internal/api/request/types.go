package request

// ConnectRequest is the request body for connecting a wallet
type ConnectRequest struct {
	WalletAddress string `json:"wallet_address"`
}

// PaymentRequest is the request body for making a payment
type PaymentRequest struct {
	Amount      string            `json:"amount"`
	Recipient   string            `json:"recipient"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
