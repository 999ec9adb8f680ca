package errors

import (
	"strings"
	"testing"
)

func TestValidatePersonName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Alice", false},
		{"valid with space", "Mary Ann", false},
		{"valid unicode", "Zoë", false},
		{"valid hyphen", "Jean-Luc", false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"separator", "a:b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePersonName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePersonName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidatePersonName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateFamilyName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "smiths", false},
		{"with dash", "smith-family", false},
		{"with dot", "smith.2024", false},
		{"with underscore", "smith_jones", false},

		{"empty", "", true},
		{"starts with dot", ".hidden", true},
		{"slash", "a/b", true},
		{"space", "the smiths", true},
		{"too long", strings.Repeat("a", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFamilyName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFamilyName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "family.json", false},
		{"nested", "testdata/family.toml", false},
		{"absolute", "/tmp/family.yaml", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidFormat,
		ErrCodeInvalidReference,
		ErrCodeInvalidGender,
		ErrCodeInvalidName,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodePersonNotFound,
		ErrCodeFamilyNotFound,
		ErrCodeFileNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeRateLimited,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
