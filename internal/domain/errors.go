package domain

import "errors"

var (
	// ErrObjectNotFound marks a blob-store fetch that failed because the key
	// does not exist, as opposed to a transport failure.
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidGrid marks grid coordinate arrays that are empty or mismatched
	// in length, making nearest-neighbor resolution impossible.
	ErrInvalidGrid = errors.New("invalid grid coordinates")

	// ErrValueLengthMismatch marks a message whose flat value array does not
	// line up with the grid's coordinate arrays.
	ErrValueLengthMismatch = errors.New("value array length mismatch")
)
