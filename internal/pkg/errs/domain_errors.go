package errs

import "errors"

// Sentinel errors shared by the dispatch pipeline and its adapters.
var (
	// ErrFatal marks failures that a later attempt cannot fix (bad key material, broken config).
	ErrFatal = errors.New("fatal dispatch error")

	// Batch lifecycle
	ErrBatchInProgress = errors.New("batch already in progress for category")
	ErrRetryExhausted  = errors.New("batch retry attempts exhausted")
	ErrUnknownCategory = errors.New("unknown category")

	// Secrets
	ErrSecretKeyMissing = errors.New("encryption key is not configured")
	ErrSecretDecrypt    = errors.New("secret could not be decrypted")

	// Reporting
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrUnknownVariant   = errors.New("unknown variant")
)
