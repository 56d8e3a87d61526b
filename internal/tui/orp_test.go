package tui

import "testing"

func TestORPPosition(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"", 0},
		{"a", 0},
		{"ab", 1},
		{"abcde", 1},
		{"abcdef", 2},
		{"abcdefghi", 3},
		{"abcdefghijkl", 4},
	}
	for _, tt := range tests {
		if got := orpPosition(tt.word); got != tt.want {
			t.Errorf("orpPosition(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}

func TestSplitAtORP(t *testing.T) {
	tests := []struct {
		word                 string
		before, focus, after string
	}{
		{"hello", "h", "e", "llo"},
		{"a", "", "a", ""},
		{"ab", "a", "b", ""},
		{"", "", "", ""},
		{"héllo", "h", "é", "llo"},
	}
	for _, tt := range tests {
		before, focus, after := splitAtORP(tt.word)
		if before != tt.before || focus != tt.focus || after != tt.after {
			t.Errorf("splitAtORP(%q) = %q,%q,%q want %q,%q,%q",
				tt.word, before, focus, after, tt.before, tt.focus, tt.after)
		}
	}
}
