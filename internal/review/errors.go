// Package review processes submitted quality ratings against progress records.
package review

import "errors"

var (
	// ErrInvalidQuality rejects a quality grade outside [0, 5] before any
	// mutation; safe to retry with corrected input.
	ErrInvalidQuality = errors.New("quality must be an integer between 0 and 5")
	// ErrUnknownItem rejects a review whose item id does not resolve;
	// not retryable without fixing the reference.
	ErrUnknownItem = errors.New("unknown item")
	// ErrConflict surfaces after the bounded optimistic retry loop keeps
	// losing to concurrent writers; the caller should try again.
	ErrConflict = errors.New("review conflicts with a concurrent update")
)
