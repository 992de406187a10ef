package fetch

import (
	"errors"
	"fmt"
)

// ErrNoHistory is returned by a BillingSource when the upstream has no
// further billing history. It ends iteration and is never surfaced to
// consumers as a failure.
var ErrNoHistory = errors.New("no further billing history upstream")

// UpstreamError represents a network or parse failure while pulling from a
// remote source. It propagates to the immediate caller; the reactive cache
// translates it into a non-fatal error notification.
type UpstreamError struct {
	// Op names the failed fetch, e.g. `billing month "2026-08"`.
	Op string

	// Err is the underlying transport or parse error.
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("upstream: %s", e.Op)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstreamError reports whether err is (or wraps) an UpstreamError.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
