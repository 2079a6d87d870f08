package ast

import (
	"testing"
)

func TestAppendAssignsIncreasingSeq(t *testing.T) {
	// Arrange
	s := NewSignature()

	// Act
	a := s.Append(ListPayload, &Content{Pattern: []byte("a")})
	b := s.Append(ListDCEStub, &Content{Pattern: []byte("b")})
	c := s.Append(ListPayload, &IsDataAt{Offset: 1})

	// Assert
	if !(a.Seq < b.Seq && b.Seq < c.Seq) {
		t.Fatalf("Sequence numbers not increasing: %d %d %d", a.Seq, b.Seq, c.Seq)
	}

	if s.Last(ListPayload) != c {
		t.Fatalf("Wrong last node in payload list")
	}

	if s.Last(ListURI) != nil {
		t.Fatalf("Expected nil last node for empty list")
	}

	if s.NodeCount() != 3 {
		t.Fatalf("Unexpected node count: %d", s.NodeCount())
	}
}

func TestMoveKeepsSeq(t *testing.T) {
	s := NewSignature()
	a := s.Append(ListPayload, &Content{Pattern: []byte("a")})
	b := s.Append(ListPayload, &Content{Pattern: []byte("b")})

	s.Move(a, ListURI)

	if len(s.Lists[ListPayload]) != 1 || s.Lists[ListPayload][0] != b {
		t.Fatalf("Unexpected payload list after move: %v", s.Lists[ListPayload])
	}

	if s.Last(ListURI) != a || a.List != ListURI || a.Seq != 0 {
		t.Fatalf("Moved node in wrong state: %+v", a)
	}
}

func TestListNames(t *testing.T) {
	for l := ListID(0); l < ListCount; l++ {
		got, ok := ListFromName(l.String())
		if !ok || got != l {
			t.Fatalf("ListFromName(%q) = %v, %v", l.String(), got, ok)
		}
	}

	if ListPacket.IsBuffer() || ListPostMatch.IsBuffer() || !ListPayload.IsBuffer() {
		t.Fatalf("Unexpected IsBuffer results")
	}

	if !ListHTTPCookie.IsHTTP() || ListDCEStub.IsHTTP() {
		t.Fatalf("Unexpected IsHTTP results")
	}
}
