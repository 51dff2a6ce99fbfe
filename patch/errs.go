package patch

import "errors"

var (
	ErrPath       = errors.New("bad path")
	ErrType       = errors.New("type mismatch")
	ErrDocumentID = errors.New("patch targets another document")
	ErrInvalid    = errors.New("invalid patch")
)
