// Package apperr defines the sentinel errors surfaced by the style
// migration core. Callers match them with errors.Is.
package apperr

import "errors"

var (
	// ErrUnsupportedFormat marks file types the service refuses to
	// process (anything other than the legacy or modern word formats).
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnrecognizedFormat means both magic-byte sniffing and the
	// filename extension failed to classify an input.
	ErrUnrecognizedFormat = errors.New("unrecognized format")
	// ErrMissingStyles means a document has no style definitions part to
	// read or copy from.
	ErrMissingStyles = errors.New("missing style definitions")
	// ErrStyleNotFound means a requested key matched neither a style id
	// nor a display name.
	ErrStyleNotFound = errors.New("style not found")
	// ErrInvalidSelection means an empty key set was given to an
	// operation that requires at least one key.
	ErrInvalidSelection = errors.New("invalid style selection")
	// ErrWildcardNotAllowed means the "*" selection was used on an
	// operation that does not accept it.
	ErrWildcardNotAllowed = errors.New("wildcard selection not allowed")
)
