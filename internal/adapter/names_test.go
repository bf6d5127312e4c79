package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlayerName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"canonical passthrough", "Virat Kohli", "Virat Kohli"},
		{"lowercase canonical", "virat kohli", "Virat Kohli"},
		{"common misspelling", "virat kolhi", "Virat Kohli"},
		{"misspelled surname expands", "kolhi", "Virat Kohli"},
		{"bare surname expands", "kohli", "Virat Kohli"},
		{"bare first name expands", "virat", "Virat Kohli"},
		{"surname expands to full name", "rohit", "Rohit Sharma"},
		{"dhoni keeps initials casing", "dhoni", "MS Dhoni"},
		{"ms alone is dhoni", "ms", "MS Dhoni"},
		{"first name expands", "kane", "Kane Williamson"},
		{"query phrasing stripped", "what are babar azam - statistics", "Babar Azam"},
		{"extra whitespace collapsed", "  steve   smith ", "Steve Smith"},
		{"partial correction inside phrase", "the great bumrah today", "The Great Jasprit Bumrah Today"},
		{"unknown name capitalized", "shubman gill", "Shubman Gill"},
		{"empty input", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePlayerName(tt.in))
		})
	}
}

func TestNormalizePlayerNameShortTokensNotPartialMatched(t *testing.T) {
	// Three-letter fragments must not rewrite substrings of unrelated
	// names; only exact matches may fire for them.
	assert.Equal(t, "Benjamin Sky", NormalizePlayerName("benjamin sky"))
	assert.Equal(t, "Ben Stokes", NormalizePlayerName("ben"))
}
