package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound   = errors.New("user not found")
	ErrWalletInUse    = errors.New("wallet is already linked to another user")
	ErrUpdateConflict = errors.New("user was modified concurrently")
	ErrInvalidWallet  = errors.New("invalid wallet address")

	// Progression errors
	ErrModuleNotFound = errors.New("module not found")
	ErrModuleLocked   = errors.New("module is locked")

	// Payment errors
	ErrNotInitialized    = errors.New("wallet client not initialized")
	ErrInvalidAmount     = errors.New("invalid payment amount")
	ErrInvalidRecipient  = errors.New("invalid recipient address")
	ErrSubmission        = errors.New("transaction submission failed")
	ErrSignerRejected    = errors.New("transaction rejected by signer")
	ErrConfirmationTimed = errors.New("transaction confirmation timed out")
	ErrCancelled         = errors.New("payment cancelled")
	ErrInvalidTxRef      = errors.New("invalid transaction reference")
	ErrReceiptNotFound   = errors.New("payment receipt not found")
)
