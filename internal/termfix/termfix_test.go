// ABOUTME: Tests for the theme environment parsing
// ABOUTME: Unknown or empty names leave the detected background alone

package termfix

import "testing"

func TestTheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dark, ok bool
	}{
		{"dark", true, true},
		{"light", false, true},
		{"", false, false},
		{"LIGHT", false, false},
		{"solarized", false, false},
	}
	for _, tt := range tests {
		dark, ok := Theme(tt.name)
		if dark != tt.dark || ok != tt.ok {
			t.Errorf("Theme(%q) = %v, %v; want %v, %v", tt.name, dark, ok, tt.dark, tt.ok)
		}
	}
}
