package keywords

import (
	"bytes"
	"testing"

	"nidscore/detect/ast"

	"golang.org/x/xerrors"
)

func TestDecodeContent(t *testing.T) {
	tests := []struct {
		in       string
		expected []byte
	}{
		{"A|42|C", []byte{0x41, 0x42, 0x43}},
		{"abc", []byte("abc")},
		{"|00 01 ff|", []byte{0x00, 0x01, 0xff}},
		{"|0001|x|FF|", []byte{0x00, 0x01, 'x', 0xff}},
		{`a\|b`, []byte("a|b")},
		{`a\"b`, []byte(`a"b`)},
	}

	for _, tt := range tests {
		got, err := decodeContent(tt.in)
		if err != nil {
			t.Fatalf("Got unexpected error for %q: %s", tt.in, err)
		}

		if !bytes.Equal(got, tt.expected) {
			t.Fatalf("decodeContent(%q) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}

func TestDecodeContentErrors(t *testing.T) {
	tests := []struct {
		in       string
		expected error
	}{
		{"", ErrEmptyContent},
		{"||", ErrEmptyContent},
		{"|4|", ErrSyntax},
		{"|4g|", ErrSyntax},
		{"|41", ErrSyntax},
	}

	for _, tt := range tests {
		_, err := decodeContent(tt.in)
		if !xerrors.Is(err, tt.expected) {
			t.Fatalf("Expected %v for %q, got %v", tt.expected, tt.in, err)
		}
	}
}

func TestContentModifiers(t *testing.T) {
	// Arrange
	c := newTestCompiler()

	// Act
	s, err := c.Compile(`content:"GET"; offset:0; depth:3; content:!"x|0d 0a|"; nocase; distance:1; within:10; sid:1;`)

	// Assert
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	l := s.Lists[ast.ListPayload]
	if len(l) != 2 {
		t.Fatalf("Unexpected list length: %d", len(l))
	}

	first := l[0].Desc.(*ast.Content)
	if first.Depth != 3 || first.Relative || !l[0].HasRelativeFollower {
		t.Fatalf("Unexpected first content: %+v (flag %v)", first, l[0].HasRelativeFollower)
	}

	second := l[1].Desc.(*ast.Content)
	if !second.Negated || !second.Nocase || !second.Relative || second.Distance != 1 || second.Within != 10 || !second.HasWithin {
		t.Fatalf("Unexpected second content: %+v", second)
	}

	if !bytes.Equal(second.Pattern, []byte{'x', '\r', '\n'}) {
		t.Fatalf("Unexpected pattern: %v", second.Pattern)
	}

	if i, _ := second.Searcher.Index([]byte("aX\r\n")); i != 1 {
		t.Fatalf("nocase searcher did not match")
	}
}

func TestContentErrors(t *testing.T) {
	c := newTestCompiler()

	tests := []struct {
		rule     string
		expected error
	}{
		{`content:abc; sid:1;`, ErrSyntax},
		{`content:""; sid:1;`, ErrEmptyContent},
		{`nocase; content:"a"; sid:1;`, ErrSyntax},
		{`content:"abc"; depth:2; sid:1;`, ErrOutOfRange},
		{`content:"abc"; distance:0; sid:1;`, ErrNoAnchor},
		{`content:"a"; content:"abc"; within:2; sid:1;`, ErrOutOfRange},
		{`content:"a"; content:"b"; distance:0; offset:3; sid:1;`, ErrSyntax},
		{`content:"a"; offset:x; sid:1;`, ErrOutOfRange},
	}

	for _, tt := range tests {
		_, err := c.Compile(tt.rule)
		if !xerrors.Is(err, tt.expected) {
			t.Fatalf("Expected %v for %s, got %v", tt.expected, tt.rule, err)
		}
	}
}

func TestHTTPModifierMovesContent(t *testing.T) {
	c := newTestCompiler()

	s, err := c.Compile(`content:"/admin"; http_uri; content:"POST"; http_method; sid:1;`)
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	if len(s.Lists[ast.ListPayload]) != 0 || len(s.Lists[ast.ListURI]) != 1 || len(s.Lists[ast.ListHTTPMethod]) != 1 {
		t.Fatalf("Contents not moved to their http lists")
	}

	if !s.Has(ast.FlagAppLayer) {
		t.Fatalf("Expected app layer flag")
	}
}

func TestStickyBuffers(t *testing.T) {
	c := newTestCompiler()

	s, err := c.Compile(`file_data; content:"body"; pkt_data; content:"raw"; dce_stub_data; content:"stub"; sid:1;`)
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	if len(s.Lists[ast.ListHTTPServerBody]) != 1 || len(s.Lists[ast.ListPayload]) != 1 || len(s.Lists[ast.ListDCEStub]) != 1 {
		t.Fatalf("Contents not placed in their sticky buffers")
	}

	if !s.Has(ast.FlagDCERPC) {
		t.Fatalf("Expected DCERPC flag")
	}

	if _, err := c.Compile(`dce_iface:not-a-uuid; content:"a"; sid:1;`); !xerrors.Is(err, ErrSyntax) {
		t.Fatalf("Expected ErrSyntax for bad uuid, got %v", err)
	}
}

func TestPcre(t *testing.T) {
	// Arrange
	c := newTestCompiler()

	// Act
	s, err := c.Compile(`content:"user="; pcre:"/^[a-z]+/iR"; pcre:!"/admin/U"; sid:1;`)

	// Assert
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	l := s.Lists[ast.ListPayload]
	if len(l) != 2 || !l[0].HasRelativeFollower {
		t.Fatalf("Expected relative pcre after flagged content")
	}

	p := l[1].Desc.(*ast.Pcre)
	if !p.Relative || p.Expr != "^[a-z]+" {
		t.Fatalf("Unexpected pcre: %+v", p)
	}

	u := lastDescriptor(t, s, ast.ListURI).(*ast.Pcre)
	if !u.Negated {
		t.Fatalf("Expected negated uri pcre")
	}
}

func TestPcreErrors(t *testing.T) {
	c := newTestCompiler()

	tests := []struct {
		rule     string
		expected error
	}{
		{`pcre:"/abc/R"; sid:1;`, ErrNoAnchor},
		{`pcre:"/abc/Z"; sid:1;`, ErrSyntax},
		{`pcre:"abc"; sid:1;`, ErrSyntax},
		{`pcre:"//"; sid:1;`, ErrSyntax},
	}

	for _, tt := range tests {
		_, err := c.Compile(tt.rule)
		if !xerrors.Is(err, tt.expected) {
			t.Fatalf("Expected %v for %s, got %v", tt.expected, tt.rule, err)
		}
	}

	if _, err := c.Compile(`pcre:"/a(b/"; sid:1;`); err == nil {
		t.Fatalf("Expected error for invalid regex, but err was nil")
	}
}
