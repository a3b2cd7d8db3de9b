package handler

import (
	"net/http"

	"github.com/mcoot/rightsquest/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest      = apierr.CodeInvalidRequest
	CodeUserNotFound        = apierr.CodeUserNotFound
	CodeWalletInUse         = apierr.CodeWalletInUse
	CodeInvalidWallet       = apierr.CodeInvalidWallet
	CodeUpdateConflict      = apierr.CodeUpdateConflict
	CodeModuleNotFound      = apierr.CodeModuleNotFound
	CodeModuleLocked        = apierr.CodeModuleLocked
	CodeNotInitialized      = apierr.CodeNotInitialized
	CodeInvalidAmount       = apierr.CodeInvalidAmount
	CodeInvalidRecipient    = apierr.CodeInvalidRecipient
	CodeSubmissionFailed    = apierr.CodeSubmissionFailed
	CodeConfirmationTimeout = apierr.CodeConfirmationTimeout
	CodePaymentCancelled    = apierr.CodePaymentCancelled
	CodeInvalidTxRef        = apierr.CodeInvalidTxRef
	CodeReceiptNotFound     = apierr.CodeReceiptNotFound
	CodeInternalError       = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
