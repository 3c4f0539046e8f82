package errors

import (
	"slices"
	"strings"
	"unicode"
)

// Report output formats accepted by the CLI and the HTTP API.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTable = "table"
)

var validFormats = []string{FormatText, FormatJSON, FormatTable}

// ValidateSourceName validates a caller supplied label for an input, such
// as the name query parameter of the HTTP API. The label ends up in logs and
// reports, so it is kept short and printable:
//   - No empty names
//   - Maximum length of 256 characters
//   - No control characters or null bytes
func ValidateSourceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "source name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "source name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "source name contains invalid control characters")
		}
	}
	return nil
}

// ValidateFormat validates a report output format.
func ValidateFormat(format string) error {
	if !slices.Contains(validFormats, format) {
		return New(ErrCodeInvalidInput, "invalid format %q (valid: %s)", format, strings.Join(validFormats, ", "))
	}
	return nil
}
