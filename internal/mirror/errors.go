package mirror

import "errors"

// Engine error kinds. ErrUnknownAccount and ErrAmountMismatch are fatal for
// the transaction they occur on: the event is logged and dropped, never
// retried. ErrSuppressed is not a failure; it marks a transaction that nets
// to a no-op and must not be mirrored. Callers check all three with
// errors.Is.
var (
	ErrUnknownAccount = errors.New("unknown account")
	ErrAmountMismatch = errors.New("amount mismatch")
	ErrSuppressed     = errors.New("transaction suppressed")
)
