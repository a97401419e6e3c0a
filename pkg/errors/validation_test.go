package errors

import (
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http with port", "http://localhost:8000", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"javascript", "javascript:alert(1)", true},
		{"no host", "http://", true},
		{"bad escape", "http://example.com/%zz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOrigin(t *testing.T) {
	for _, ok := range []string{"*", "http://localhost:5173", "https://editor.example.com/"} {
		if err := ValidateOrigin(ok); err != nil {
			t.Errorf("ValidateOrigin(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "**", "localhost:5173", "ftp://x"} {
		if err := ValidateOrigin(bad); !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateOrigin(%q) = %v, want %s", bad, err, ErrCodeInvalidInput)
		}
	}
}

func TestValidateListenAddr(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"port only", ":8000", false},
		{"host and port", "127.0.0.1:8000", false},
		{"named host", "localhost:0", false},

		{"empty", "", true},
		{"missing port", "localhost", true},
		{"port out of range", ":70000", true},
		{"non-numeric port", ":http-alt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateListenAddr(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateListenAddr(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		maxLen  int
		wantErr bool
	}{
		{"simple", "llm-1", 64, false},
		{"empty allowed", "", 64, false},
		{"unicode", "nœud-1", 64, false},
		{"no limit", strings.Repeat("x", 1000), 0, false},

		{"too long", strings.Repeat("x", 65), 64, true},
		{"newline", "a\nb", 64, true},
		{"null byte", "a\x00b", 64, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.id, tt.maxLen)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPayload) {
				t.Errorf("ValidateNodeID(%q) code = %v, want %v", tt.id, GetCode(err), ErrCodeInvalidPayload)
			}
		})
	}
}
