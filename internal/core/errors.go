package core

import "errors"

var (
	// ErrInvalidObject is returned when an object or one of its attributes is rejected.
	ErrInvalidObject = errors.New("invalid object")
	// ErrInvalidImage is returned when image data cannot be used.
	ErrInvalidImage = errors.New("invalid image")
	// ErrObjectNotFound is returned when no object has the requested uuid.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidConfiguration is returned when a configuration fails validation or the remote check.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrNotConfigured is returned when the image search index is used before a configuration was saved.
	ErrNotConfigured = errors.New("image search is not configured")
)
