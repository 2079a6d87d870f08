package spm

import (
	"testing"
)

func TestRegexAutomaton(t *testing.T) {
	// Arrange
	r, err := CompileRegex(`a(l+)`, RegexOptions{})
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	// Act
	loc, err := r.FindIndex([]byte("Hi all!"))

	// Assert
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	if len(loc) != 2 || loc[0] != 3 || loc[1] != 6 {
		t.Fatalf("Unexpected location: %v", loc)
	}

	if _, ok := r.(*automatonRegex); !ok {
		t.Fatalf("Expected automaton engine, got %T", r)
	}
}

func TestRegexBinaryOffsets(t *testing.T) {
	r, err := CompileRegex(`\xff+B`, RegexOptions{})
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	loc, _ := r.FindIndex([]byte{'a', 0xfe, 0xff, 0xff, 'B'})
	if len(loc) != 2 || loc[0] != 2 || loc[1] != 5 {
		t.Fatalf("Unexpected location: %v", loc)
	}
}

func TestRegexFallbackForLookahead(t *testing.T) {
	// Arrange
	r, err := CompileRegex(`al(?=l!)`, RegexOptions{})
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	// Act
	loc, err := r.FindIndex([]byte{'H', 'i', 0xe9, 'a', 'l', 'l', '!'})

	// Assert
	if _, ok := r.(*backtrackingRegex); !ok {
		t.Fatalf("Expected backtracking engine, got %T", r)
	}

	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	if len(loc) != 2 || loc[0] != 3 || loc[1] != 5 {
		t.Fatalf("Unexpected location: %v", loc)
	}
}

func TestRegexOptions(t *testing.T) {
	tests := []struct {
		expr     string
		opts     RegexOptions
		input    string
		expected bool
	}{
		{`ALL`, RegexOptions{}, "hi all", false},
		{`ALL`, RegexOptions{CaseInsensitive: true}, "hi all", true},
		{`hi.all`, RegexOptions{}, "hi\nall", false},
		{`hi.all`, RegexOptions{DotAll: true}, "hi\nall", true},
		{`^all`, RegexOptions{}, "hi\nall", false},
		{`^all`, RegexOptions{MultiLine: true}, "hi\nall", true},
		{`h i # comment`, RegexOptions{Extended: true}, "hi", true},
		{`a++b`, RegexOptions{}, "xaab", true},
	}

	for _, tt := range tests {
		r, err := CompileRegex(tt.expr, tt.opts)
		if err != nil {
			t.Fatalf("Got unexpected error for %q: %s", tt.expr, err)
		}

		loc, err := r.FindIndex([]byte(tt.input))
		if err != nil {
			t.Fatalf("Got unexpected error for %q: %s", tt.expr, err)
		}

		if (loc != nil) != tt.expected {
			t.Fatalf("Regex %q on %q: expected match=%v", tt.expr, tt.input, tt.expected)
		}
	}
}

func TestRegexInvalid(t *testing.T) {
	if _, err := CompileRegex(`a(b`, RegexOptions{}); err == nil {
		t.Fatalf("Expected error, but err was nil")
	}
}

func TestRemovePcrePossessiveQuantifier(t *testing.T) {
	tests := map[string]string{
		`a++`:      `a+`,
		`a*+b`:     `a*b`,
		`a?+`:      `a?`,
		`a{1,3}+`:  `a{1,3}`,
		`a\++`:     `a\++`,
		`abc`:      `abc`,
		`(x)\\++y`: `(x)\\+y`,
	}

	for in, expected := range tests {
		if got := removePcrePossessiveQuantifier(in); got != expected {
			t.Fatalf("removePcrePossessiveQuantifier(%q) = %q, expected %q", in, got, expected)
		}
	}
}
