package config

import "errors"

// Sentinel errors for internal use.
var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidBatchSize    = errors.New("batch size must be at least 1")
	ErrInvalidFeeRates     = errors.New("fee rates out of range")
	ErrNoSigner            = errors.New("no signer configured")
	ErrEmptyBatch          = errors.New("batch is empty")
	ErrUnknownTokenProgram = errors.New("unknown token program")

	// SOL transaction lifecycle.
	ErrTxTooLarge            = errors.New("transaction exceeds 1232 byte limit")
	ErrTxFailed              = errors.New("transaction failed on-chain")
	ErrConfirmationTimeout   = errors.New("transaction confirmation timeout")
	ErrProviderUnavailable   = errors.New("rpc provider unavailable")

	// Close operation.
	ErrCloseInProgress = errors.New("close operation already in progress")
	ErrNoSuchStats     = errors.New("no stats recorded for wallet")
)

// Error codes — shared with API clients.
const (
	ErrorInvalidAddress    = "ERROR_INVALID_ADDRESS"
	ErrorInvalidConfig     = "ERROR_INVALID_CONFIG"
	ErrorDatabase          = "ERROR_DATABASE"
	ErrorScanFailed        = "ERROR_SCAN_FAILED"
	ErrorCloseFailed       = "ERROR_CLOSE_FAILED"
	ErrorCloseInProgress   = "ERROR_CLOSE_IN_PROGRESS"
	ErrorSignerUnavailable = "ERROR_SIGNER_UNAVAILABLE"
	ErrorNotFound          = "ERROR_NOT_FOUND"
	ErrorBadRequest        = "ERROR_BAD_REQUEST"
)
