package tui

import (
	"strings"
	"testing"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"short key fully masked", "sk-1234", "***"},
		{"empty key", "", "***"},
		{"long key keeps edges", "AIzaSyA-test-key-0123456789abcdefghijk", "AIzaSyA...hijk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskAPIKey(tt.key); got != tt.want {
				t.Errorf("maskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestMaskAPIKeyNeverLeaksMiddle(t *testing.T) {
	key := "AIzaSyA-secret-middle-portion-0123456789"
	masked := maskAPIKey(key)
	if strings.Contains(masked, "secret-middle") {
		t.Errorf("masked key %q leaks the middle of the key", masked)
	}
}

func TestProviderDisplayName(t *testing.T) {
	if got := providerDisplayName("gemini"); got != "Google Gemini" {
		t.Errorf("providerDisplayName(gemini) = %q", got)
	}
	if got := providerDisplayName("unknown-provider"); got != "unknown-provider" {
		t.Errorf("providerDisplayName falls back to the raw name, got %q", got)
	}
}
