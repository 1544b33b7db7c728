package helpers

import "errors"

var (
	// ErrInvalidPath indicates a path containing NUL or line-break characters.
	ErrInvalidPath = errors.New("path contains invalid characters")
	// ErrNotDirectory indicates a path that exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)
