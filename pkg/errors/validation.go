package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxNameLength = 256

// ValidatePersonName validates a person name taken from user input (CLI
// arguments, query parameters) before it is looked up in a family.
//
// The rules are intentionally loose, since names are free text:
//   - No empty or whitespace-only names
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//   - No ':' (reserved as the path separator of relationship keys)
func ValidatePersonName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "person name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "person name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "person name contains invalid control characters")
		}
	}

	if strings.Contains(name, ":") {
		return New(ErrCodeInvalidName, "person name cannot contain ':'")
	}

	return nil
}

// familyNameRegex matches identifiers families are stored under.
var familyNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateFamilyName validates the key a family is saved under in a store.
func ValidateFamilyName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "family name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "family name too long (max %d characters)", maxNameLength)
	}

	if !familyNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid family name: %q", name)
	}

	return nil
}

// ValidatePath validates a local file path given on the command line or in
// the config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
