package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/rightsquest/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeWalletInUse         = "WALLET_IN_USE"
	CodeInvalidWallet       = "INVALID_WALLET"
	CodeUpdateConflict      = "UPDATE_CONFLICT"
	CodeModuleNotFound      = "MODULE_NOT_FOUND"
	CodeModuleLocked        = "MODULE_LOCKED"
	CodeNotInitialized      = "NOT_INITIALIZED"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeInvalidRecipient    = "INVALID_RECIPIENT"
	CodeSubmissionFailed    = "SUBMISSION_FAILED"
	CodeConfirmationTimeout = "CONFIRMATION_TIMEOUT"
	CodePaymentCancelled    = "PAYMENT_CANCELLED"
	CodeInvalidTxRef        = "INVALID_TX_REF"
	CodeReceiptNotFound     = "RECEIPT_NOT_FOUND"
	CodeNotFound            = "NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// StatusOf returns the HTTP status an error is reported with
func StatusOf(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Payment failures keep the pipeline's message
	var pe *model.PaymentError
	if errors.As(err, &pe) {
		status, code := PaymentStatus(pe.Kind)
		return &httpError{status, APIError{code, pe.Message}}
	}

	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrWalletInUse):
		return &httpError{http.StatusConflict, APIError{CodeWalletInUse, "Wallet is already linked to another user"}}
	case errors.Is(err, model.ErrInvalidWallet):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidWallet, "Invalid wallet address"}}
	case errors.Is(err, model.ErrUpdateConflict):
		return &httpError{http.StatusConflict, APIError{CodeUpdateConflict, "User was modified concurrently, retry"}}
	case errors.Is(err, model.ErrModuleNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeModuleNotFound, "Module not found"}}
	case errors.Is(err, model.ErrModuleLocked):
		return &httpError{http.StatusConflict, APIError{CodeModuleLocked, "Module is locked"}}
	case errors.Is(err, model.ErrNotInitialized):
		return &httpError{http.StatusConflict, APIError{CodeNotInitialized, "Wallet client not initialized"}}
	case errors.Is(err, model.ErrInvalidTxRef):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTxRef, "Invalid transaction reference"}}
	case errors.Is(err, model.ErrReceiptNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeReceiptNotFound, "Payment receipt not found"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// PaymentStatus maps a payment failure kind to its HTTP status and error code
func PaymentStatus(kind model.PaymentErrorKind) (int, string) {
	switch kind {
	case model.KindNotInitialized:
		return http.StatusConflict, CodeNotInitialized
	case model.KindInvalidAmount:
		return http.StatusBadRequest, CodeInvalidAmount
	case model.KindInvalidRecipient:
		return http.StatusBadRequest, CodeInvalidRecipient
	case model.KindSubmissionFailure:
		return http.StatusBadGateway, CodeSubmissionFailed
	case model.KindConfirmationTimeout:
		return http.StatusGatewayTimeout, CodeConfirmationTimeout
	case model.KindCancelled:
		// nginx's client-closed-request
		return 499, CodePaymentCancelled
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
