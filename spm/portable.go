package spm

import (
	"bytes"
	"fmt"
)

type portableBackend struct{}

func (portableBackend) Name() string { return Portable }

func (portableBackend) Compile(needle []byte, nocase bool) (Pattern, error) {
	if len(needle) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}

	n := append([]byte(nil), needle...)
	if !nocase {
		return exactPattern(n), nil
	}

	return newFoldPattern(n), nil
}

type exactPattern []byte

func (p exactPattern) Index(haystack []byte) (int, error) { return bytes.Index(haystack, p), nil }
func (p exactPattern) Len() int                           { return len(p) }

// foldPattern is a Horspool search over ASCII case folded bytes.
type foldPattern struct {
	needle []byte
	skip   [256]int
}

func newFoldPattern(needle []byte) *foldPattern {
	p := &foldPattern{needle: make([]byte, len(needle))}
	for i, c := range needle {
		p.needle[i] = toLower(c)
	}

	for i := range p.skip {
		p.skip[i] = len(needle)
	}
	for i := 0; i < len(needle)-1; i++ {
		c := p.needle[i]
		p.skip[c] = len(needle) - 1 - i
		p.skip[toUpper(c)] = len(needle) - 1 - i
	}

	return p
}

func (p *foldPattern) Len() int { return len(p.needle) }

func (p *foldPattern) Index(haystack []byte) (int, error) {
	n := len(p.needle)
	last := n - 1

	for i := 0; i+n <= len(haystack); i += p.skip[haystack[i+last]] {
		j := last
		for j >= 0 && toLower(haystack[i+j]) == p.needle[j] {
			j--
		}
		if j < 0 {
			return i, nil
		}
	}

	return -1, nil
}

func toLower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func toUpper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
