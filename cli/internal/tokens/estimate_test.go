package tokens

import (
	"strings"
	"testing"
)

func TestEstimate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		prompt string
		want   int
	}{
		{"empty", "", 0},
		{"one_byte", "a", 1},
		{"three_bytes", "abc", 1},
		{"four_bytes", "abcd", 1},
		{"five_bytes", "abcde", 2},
		{"eight_bytes", "abcdefgh", 2},
		{"hundred_bytes", strings.Repeat("x", 100), 25},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Estimate(tt.prompt); got != tt.want {
				t.Errorf("Estimate(%q) = %d, want %d", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestWarnIfOver(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		promptTokens  int
		reserve       int
		contextLimit  int
		warnThreshold float64
		wantWarning   bool
	}{
		{"zero_limit_disables", 1000, 512, 0, 0.9, false},
		{"well_under", 100, 100, 4096, 0.9, false},
		{"at_threshold", 3687, 0, 4096, 0.9, true},
		{"over_limit", 5000, 512, 4096, 0.9, true},
		{"negative_prompt", -1, 512, 4096, 0.9, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := WarnIfOver(tt.promptTokens, tt.reserve, tt.contextLimit, tt.warnThreshold)
			if (got != "") != tt.wantWarning {
				t.Errorf("WarnIfOver(%d, %d, %d, %v) = %q, wantWarning=%v",
					tt.promptTokens, tt.reserve, tt.contextLimit, tt.warnThreshold, got, tt.wantWarning)
			}
		})
	}
}
