package model

import "errors"

var (
	// ErrNotFound means the query was well formed but no data exists for the key.
	ErrNotFound = errors.New("not found")
	// ErrInvalidShape means data exists but failed structural validation.
	ErrInvalidShape = errors.New("invalid shape")
	// ErrUnavailable is a transport or infrastructure failure (timeout, connection error). Retryable.
	ErrUnavailable = errors.New("unavailable")
	// ErrInsufficientData means there was nothing to compute a result from.
	ErrInsufficientData = errors.New("insufficient data")
)

// IsAbsent reports whether err means "no data" to a caller: NotFound or InvalidShape.
func IsAbsent(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidShape)
}
