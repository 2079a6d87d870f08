package spm

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"rsc.io/binaryregexp"
)

// RegexMatchTimeout bounds a single match attempt of the backtracking engine.
var RegexMatchTimeout = 100 * time.Millisecond

// RegexOptions are the PCRE option letters supported by the pcre keyword.
type RegexOptions struct {
	CaseInsensitive bool // i
	DotAll          bool // s
	MultiLine       bool // m
	Extended        bool // x
}

// Regex is a compiled expression that matches on raw bytes. Offsets are byte offsets.
type Regex interface {
	// FindIndex returns the start and end of the leftmost match in b, or nil.
	FindIndex(b []byte) (loc []int, err error)
	String() string
}

// CompileRegex compiles expr for matching arbitrary bytes. The automaton engine is used when the
// expression allows it, and the backtracking engine for PCRE-only syntax such as lookarounds and backreferences.
func CompileRegex(expr string, opts RegexOptions) (r Regex, err error) {
	if !opts.Extended {
		var flags string
		if opts.CaseInsensitive {
			flags += "i"
		}
		if opts.DotAll {
			flags += "s"
		}
		if opts.MultiLine {
			flags += "m"
		}

		e := removePcrePossessiveQuantifier(expr)
		if flags != "" {
			e = "(?" + flags + ")" + e
		}

		var br *binaryregexp.Regexp
		br, err = binaryregexp.Compile(e)
		if err == nil {
			r = &automatonRegex{re: br, expr: expr}
			return
		}
	}

	var o regexp2.RegexOptions
	if opts.CaseInsensitive {
		o |= regexp2.IgnoreCase
	}
	if opts.DotAll {
		o |= regexp2.Singleline
	}
	if opts.MultiLine {
		o |= regexp2.Multiline
	}
	if opts.Extended {
		o |= regexp2.IgnorePatternWhitespace
	}

	var re *regexp2.Regexp
	re, err = regexp2.Compile(expr, o)
	if err != nil {
		err = fmt.Errorf("failed to compile regex %v. Error was: %v", expr, err)
		return
	}
	re.MatchTimeout = RegexMatchTimeout

	r = &backtrackingRegex{re: re, expr: expr}
	return
}

type automatonRegex struct {
	re   *binaryregexp.Regexp
	expr string
}

func (a *automatonRegex) FindIndex(b []byte) ([]int, error) { return a.re.FindIndex(b), nil }
func (a *automatonRegex) String() string                      { return a.expr }

// backtrackingRegex maps every byte to the rune of the same value, so rune offsets equal byte offsets.
type backtrackingRegex struct {
	re   *regexp2.Regexp
	expr string
}

func (b *backtrackingRegex) String() string { return b.expr }

func (b *backtrackingRegex) FindIndex(buf []byte) ([]int, error) {
	runes := make([]rune, len(buf))
	for i, c := range buf {
		runes[i] = rune(c)
	}

	m, err := b.re.FindRunesMatch(runes)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}

	return []int{m.Index, m.Index + m.Length}, nil
}

var removePcrePlusPossessiveQuantifierRegex = regexp.MustCompile(`((^|[^\\])(\\\\)*)\+\+`)
var removePcreStarPossessiveQuantifierRegex = regexp.MustCompile(`((^|[^\\])(\\\\)*)\*\+`)
var removePcreQuestionmarkPossessiveQuantifierRegex = regexp.MustCompile(`((^|[^\\])(\\\\)*)\?\+`)
var removePcreRangePossessiveQuantifierRegex = regexp.MustCompile(`((^|[^\\])(\\\\)*)({\d+(,(\d+)?)?})\+`)

// Possessive quantifiers only tell a backtracking engine not to backtrack. The automaton never does, and rejects the syntax.
func removePcrePossessiveQuantifier(r string) string {
	if strings.Contains(r, "++") {
		r = removePcrePlusPossessiveQuantifierRegex.ReplaceAllString(r, "${1}+")
	}

	if strings.Contains(r, "*+") {
		r = removePcreStarPossessiveQuantifierRegex.ReplaceAllString(r, "${1}*")
	}

	if strings.Contains(r, "?+") {
		r = removePcreQuestionmarkPossessiveQuantifierRegex.ReplaceAllString(r, "${1}?")
	}

	if strings.Contains(r, "}+") {
		r = removePcreRangePossessiveQuantifierRegex.ReplaceAllString(r, "${1}${4}")
	}

	return r
}
