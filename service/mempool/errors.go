package mempool

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get and Delete for unknown transaction ids.
var ErrNotFound = errors.New("transaction not found")

// ValidationError rejects a malformed submission before it reaches the
// ledger. The Field names the offending payload field so callers can build
// a structured response.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transaction: %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
