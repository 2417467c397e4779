package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirmOverwrite(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "yes\n", true},
		{"yes without newline", "YES", true},
		{"no", "no\n", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := ConfirmOverwrite(strings.NewReader(tt.input), &out, "/tmp/lanscan/config.yaml")
			if got != tt.want {
				t.Errorf("ConfirmOverwrite(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "/tmp/lanscan/config.yaml") {
				t.Errorf("prompt does not mention the path\n%s", out.String())
			}
		})
	}
}
