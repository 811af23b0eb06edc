package common

import "errors"

// Request-scoped input-validation failures. Everything else that goes wrong
// during analysis degrades to a safe default (zero, null, or a false flag)
// instead of surfacing an error.
var (
	ErrEmptyFile      = errors.New("file is empty")
	ErrNoAmountColumn = errors.New("no amount column found (looked for 'amount', 'debit', 'credit')")
)

// IsInputError reports whether err should be blamed on the uploaded file
// rather than on the service.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyFile) || errors.Is(err, ErrNoAmountColumn)
}
