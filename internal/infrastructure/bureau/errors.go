package bureau

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a failed bureau call.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorAuthentication ErrorCategory = "authentication"
	ErrorOutage         ErrorCategory = "provider_outage"
	ErrorBadData        ErrorCategory = "bad_data"
	ErrorNotFound       ErrorCategory = "not_found"
	ErrorRateLimited    ErrorCategory = "rate_limited"
	ErrorInternal       ErrorCategory = "internal"
)

// Error wraps a bureau failure with its category and the operation that failed.
type Error struct {
	Category   ErrorCategory
	Op         string
	StatusCode int
	Underlying error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("bureau %s [%s]", e.Op, e.Category)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status %d", e.StatusCode)
	}
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// Category extracts the error category; non-bureau errors are internal.
func Category(err error) ErrorCategory {
	var be *Error
	if errors.As(err, &be) {
		return be.Category
	}
	return ErrorInternal
}

// ErrNotConfigured is returned when no base URL is set.
var ErrNotConfigured = errors.New("bureau: base URL is not set")

func categoryForStatus(code int) ErrorCategory {
	switch {
	case code == 401 || code == 403:
		return ErrorAuthentication
	case code == 404:
		return ErrorNotFound
	case code == 429:
		return ErrorRateLimited
	case code >= 500:
		return ErrorOutage
	default:
		return ErrorBadData
	}
}
