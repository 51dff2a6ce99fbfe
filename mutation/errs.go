package mutation

import (
	"errors"

	"github.com/signadot/mutator/document"
)

var (
	ErrRevisionMismatch     = document.ErrRevisionMismatch
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrDocumentExists is returned by Create against an existing document
	// when strict creation is enabled.
	ErrDocumentExists = errors.New("document already exists")
)
