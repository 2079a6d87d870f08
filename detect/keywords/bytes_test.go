package keywords

import (
	"testing"

	"nidscore/detect/ast"

	"golang.org/x/xerrors"
)

func TestByteJump(t *testing.T) {
	// Arrange
	c := newTestCompiler()

	// Act
	s, err := c.Compile(`content:"len"; byte_jump:2,1,relative,little,align,multiplier 2,post_offset -1; sid:1;`)

	// Assert
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	d := lastDescriptor(t, s, ast.ListPayload).(*ast.ByteJump)
	if d.Bytes != 2 || d.Offset != 1 || !d.Relative || d.BigEndian || !d.Align || d.Multiplier != 2 || d.PostOffset != -1 {
		t.Fatalf("Unexpected descriptor: %+v", d)
	}

	if !s.Lists[ast.ListPayload][0].HasRelativeFollower {
		t.Fatalf("Content before a relative byte_jump should be flagged")
	}
}

func TestByteJumpString(t *testing.T) {
	c := newTestCompiler()

	s, err := c.Compile(`byte_jump:4,0,string,hex,from_beginning; sid:1;`)
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	d := lastDescriptor(t, s, ast.ListPayload).(*ast.ByteJump)
	if !d.String || d.Base != 16 || !d.FromBeginning || !d.BigEndian {
		t.Fatalf("Unexpected descriptor: %+v", d)
	}
}

func TestByteTest(t *testing.T) {
	c := newTestCompiler()

	s, err := c.Compile(`byte_test:1,!&,0x80,0; byte_test:2,>=,1000,2,string,dec; sid:1;`)
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	l := s.Lists[ast.ListPayload]
	first := l[0].Desc.(*ast.ByteTest)
	if !first.Negated || first.Op != ast.OpAnd || first.Value != 0x80 {
		t.Fatalf("Unexpected first descriptor: %+v", first)
	}

	second := l[1].Desc.(*ast.ByteTest)
	if second.Op != ast.OpGreaterEqual || second.Value != 1000 || !second.String || second.Base != 10 || second.Offset != 2 {
		t.Fatalf("Unexpected second descriptor: %+v", second)
	}
}

func TestByteExtract(t *testing.T) {
	c := newTestCompiler()

	s, err := c.Compile(`byte_extract:1,0,a; byte_extract:2,1,b,relative,little,align 2; sid:1;`)
	if err != nil {
		t.Fatalf("Got unexpected error: %s", err)
	}

	if s.ByteExtractCount != 2 {
		t.Fatalf("Unexpected byte_extract count: %d", s.ByteExtractCount)
	}

	b := lastDescriptor(t, s, ast.ListPayload).(*ast.ByteExtract)
	if b.Name != "b" || b.LocalID != 1 || b.BigEndian || b.Align != 2 || !b.Relative {
		t.Fatalf("Unexpected descriptor: %+v", b)
	}
}

func TestByteKeywordErrors(t *testing.T) {
	c := newTestCompiler()

	tests := []struct {
		rule     string
		expected error
	}{
		{`byte_jump:9,0; sid:1;`, ErrOutOfRange},
		{`byte_jump:0,0; sid:1;`, ErrOutOfRange},
		{`byte_jump:2; sid:1;`, ErrSyntax},
		{`byte_jump:2,0,bogus; sid:1;`, ErrSyntax},
		{`byte_test:1,~,1,0; sid:1;`, ErrSyntax},
		{`byte_test:1,=,x,0; sid:1;`, ErrOutOfRange},
		{`byte_test:1,=,1; sid:1;`, ErrSyntax},
		{`byte_test:1,=,1,0,from_beginning; sid:1;`, ErrSyntax},
		{`byte_extract:1,0,1abc; sid:1;`, ErrSyntax},
		{`byte_extract:1,0,a; byte_extract:1,1,a; sid:1;`, ErrSyntax},
		{`byte_extract:1,0,a,align 3; sid:1;`, ErrOutOfRange},
		{`byte_extract:1,0,a,multiplier 0; sid:1;`, ErrOutOfRange},
	}

	for _, tt := range tests {
		_, err := c.Compile(tt.rule)
		if !xerrors.Is(err, tt.expected) {
			t.Fatalf("Expected %v for %s, got %v", tt.expected, tt.rule, err)
		}
	}
}
