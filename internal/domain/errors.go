package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the pipeline. Callers match with errors.Is; the
// wrapped message carries the file path and, where available, the row number
// so operators can locate the offending input.
var (
	// ErrFileNotFound marks a missing input path.
	ErrFileNotFound = errors.New("file not found")
	// ErrParse marks a structurally malformed file or row.
	ErrParse = errors.New("parse error")
	// ErrValidation marks a value outside its domain, e.g. negative rainfall.
	ErrValidation = errors.New("validation error")
	// ErrConfig marks missing or inconsistent static configuration, e.g. a
	// station with no neighborhood mapping.
	ErrConfig = errors.New("config error")
)

// ParseErrorf wraps ErrParse with file and row context. A row of 0 means the
// row is unknown (file-level failure).
func ParseErrorf(path string, row int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if row > 0 {
		return fmt.Errorf("%w: %s: row %d: %s", ErrParse, path, row, msg)
	}
	return fmt.Errorf("%w: %s: %s", ErrParse, path, msg)
}

// ValidationErrorf wraps ErrValidation with a formatted message.
func ValidationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ConfigErrorf wraps ErrConfig with a formatted message.
func ConfigErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
