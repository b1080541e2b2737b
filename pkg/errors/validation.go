package errors

import (
	"strings"
	"unicode"
)

// ValidateCaseID validates a case identifier before it is used in backend
// request paths, cache keys, or storage queries.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No path traversal sequences (.., slash, backslash)
//   - Maximum length of 128 characters
func ValidateCaseID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCase, "case id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidCase, "case id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCase, "case id contains invalid control characters")
		}
	}

	// Case ids are used as single path segments in backend URLs.
	dangerousPatterns := []string{
		"..",
		"/",
		"\\",
		"\x00",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidCase, "case id contains invalid characters: %q", pattern)
		}
	}

	return nil
}
