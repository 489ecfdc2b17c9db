package errors

import (
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateSpacing checks layout spacing values.
// Both gaps must be finite and non-negative; zero is allowed for tightly
// packed layouts.
func ValidateSpacing(x, y float64) error {
	for _, v := range []struct {
		name string
		val  float64
	}{{"spacing_x", x}, {"spacing_y", y}} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return New(ErrCodeInvalidConfig, "%s must be a finite number", v.name)
		}
		if v.val < 0 {
			return New(ErrCodeInvalidConfig, "%s must not be negative (got %g)", v.name, v.val)
		}
	}
	return nil
}

// ValidateFieldName validates the name of a block data field or attribute.
//
// Names mirror form input names, so empty names and names with spaces
// are allowed. Control characters and names over 128 bytes are rejected.
func ValidateFieldName(name string) error {
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "field name too long (max 128 characters)")
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return New(ErrCodeInvalidInput, "field name %q contains control characters", name)
	}
	return nil
}

// ValidateDocumentID validates a stored chart identifier.
// Chart IDs are UUIDs assigned by the store.
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "chart id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid chart id %q", id)
	}
	return nil
}

// ValidatePath validates an output or input file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	if strings.ContainsFunc(path, unicode.IsControl) {
		return New(ErrCodeInvalidPath, "path contains invalid characters")
	}

	return nil
}
