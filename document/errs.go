package document

import "errors"

var (
	// ErrRevisionMismatch is returned when a revision precondition does
	// not hold for a document.
	ErrRevisionMismatch = errors.New("revision mismatch")

	ErrNotObject = errors.New("document is not an object")
)
