// Package errs holds the sentinel error kinds shared across the
// pipeline components, so callers can classify a failure with
// errors.Is regardless of which component raised it.
package errs

import "errors"

var (
	// ErrConfig marks a missing or malformed configuration; fatal at
	// startup.
	ErrConfig = errors.New("config error")

	// ErrPreload marks a source store unreachable or malformed; fatal
	// for the batch.
	ErrPreload = errors.New("preload error")

	// ErrInputOrder marks an employee's source stream that is not
	// timestamp-sorted; the work item is skipped.
	ErrInputOrder = errors.New("input order error")

	// ErrClassification marks an internal invariant violated during
	// classification; the work item is skipped.
	ErrClassification = errors.New("classification error")

	// ErrPersistence marks a transient write failure; retried with
	// backoff, then converted to a per-item failure.
	ErrPersistence = errors.New("persistence error")

	// ErrCancelled marks cooperative cancellation of a batch.
	ErrCancelled = errors.New("cancelled")
)
