package telegram

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain topic", "plain topic"},
		{"rates*up", "rates\\*up"},
		{"a_b [c] `d`", "a\\_b \\[c] \\`d\\`"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := escapeMarkdown(tt.in); got != tt.want {
			t.Errorf("escapeMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLastNewline(t *testing.T) {
	if got := lastNewline("a\nb\nc"); got != 3 {
		t.Errorf("lastNewline = %d, want 3", got)
	}
	if got := lastNewline("abc"); got != -1 {
		t.Errorf("lastNewline without newline = %d, want -1", got)
	}
}
