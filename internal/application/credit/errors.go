package credit

import "errors"

var (
	// ErrInvalidInput is returned before any bureau or storage call when the request is malformed.
	ErrInvalidInput = errors.New("credit: invalid input")
	// ErrDuplicateIdempotencyToken is returned when a replayed token already has a decision.
	ErrDuplicateIdempotencyToken = errors.New("credit: duplicate idempotency token")
	// ErrNotFound is returned when a decision does not exist or belongs to another owner.
	ErrNotFound = errors.New("credit: check not found")
)
