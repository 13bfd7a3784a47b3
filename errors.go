package docconv

import "errors"

// Sentinel errors for library operations. Errors returned by Service
// operations wrap exactly one of these categories; use errors.Is to
// classify a failure without depending on internal packages.
var (
	// ErrValidation covers rejected input: a byte stream that is not a
	// Word document, or JSON that is not an array of compatible
	// records.
	ErrValidation = errors.New("invalid input")

	// ErrMalformedDocument covers input that passed the cheap checks
	// but could not be parsed, such as a truncated DOCX archive.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrRender covers failures while producing the output bytes.
	ErrRender = errors.New("document rendering failed")
)
