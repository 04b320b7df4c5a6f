package errors

import "errors"

var (
	ErrNotFound = errors.New("slot not found")

	ErrInvalidID = errors.New("invalid slot ID format")

	// ErrSeatUnavailable means the conditional claim matched nothing: the
	// slot is missing, disabled, or out of seats.
	ErrSeatUnavailable = errors.New("slot full or disabled")

	// ErrNoSeatToRelease means a release found no slot below max capacity,
	// which indicates a capacity accounting bug upstream.
	ErrNoSeatToRelease = errors.New("no claimed seat to release")
)
