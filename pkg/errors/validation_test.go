package errors

import (
	"math"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "login-flow", false},
		{"valid with dot", "checkout.flow", false},
		{"valid with space", "My Flow", false},
		{"valid unicode", "café", false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", string(make([]byte, 300)), true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"dot", ".", true},
		{"dot dot", "..", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidateName(%q) returned wrong error code: %v", tt.input, err)
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
		{"root", "", false},
		{"valid simple", "flows/login", false},
		{"valid filename only", "README.md", false},
		{"valid with dots", "v1..2/flow", false},

		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
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

func TestValidateScale(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"one", 1, false},
		{"zoomed out", 0.25, false},
		{"zoomed in", 4, false},

		{"zero", 0, true},
		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScale(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateScale(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	if err := ValidatePositive("speed", 80); err != nil {
		t.Errorf("ValidatePositive(80) error = %v, want nil", err)
	}
	err := ValidatePositive("speed", 0)
	if !Is(err, ErrCodeInvalidConfig) {
		t.Errorf("ValidatePositive(0) error = %v, want %s", err, ErrCodeInvalidConfig)
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidPath,
		ErrCodeInvalidName,
		ErrCodeInvalidScript,
		ErrCodeInvalidConfig,
		ErrCodeInvalidFormat,
		ErrCodeNotFound,
		ErrCodeStaleHandle,
		ErrCodeNotResizable,
		ErrCodeCyclicReference,
		ErrCodeNoStartSurface,
		ErrCodeNoConnectedEdges,
		ErrCodeNoTokens,
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
