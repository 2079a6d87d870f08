package varname

import (
	"sync"
	"testing"
)

func TestInternIsIdempotent(t *testing.T) {
	// Arrange
	s := NewStore()

	// Act
	a := s.Intern("session", FlowVar)
	b := s.Intern("user", FlowVar)
	a2 := s.Intern("session", FlowVar)

	// Assert
	if a != 1 || b != 2 {
		t.Fatalf("Unexpected indexes: %d %d", a, b)
	}

	if a2 != a {
		t.Fatalf("Intern not stable: %d != %d", a2, a)
	}

	if s.Len() != 2 {
		t.Fatalf("Unexpected len: %d", s.Len())
	}
}

func TestInternKindsAreSeparate(t *testing.T) {
	// Arrange
	s := NewStore()

	// Act
	a := s.Intern("x", FlowVar)
	b := s.Intern("x", PktVar)

	// Assert
	if a == b {
		t.Fatalf("Same index %d for different kinds", a)
	}

	name, kind, ok := s.Lookup(b)
	if !ok || name != "x" || kind != PktVar {
		t.Fatalf("Unexpected lookup result: %v %v %v", name, kind, ok)
	}
}

func TestLookupUnknown(t *testing.T) {
	s := NewStore()
	s.Intern("x", FlowVar)

	if _, _, ok := s.Lookup(0); ok {
		t.Fatalf("Index 0 should never be allocated")
	}

	if _, _, ok := s.Lookup(5); ok {
		t.Fatalf("Expected lookup of unallocated index to fail")
	}
}

func TestInternConcurrent(t *testing.T) {
	// Arrange
	s := NewStore()
	names := []string{"a", "b", "c", "d"}
	results := make([][]uint32, 8)

	// Act
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for _, n := range names {
				results[i] = append(results[i], s.Intern(n, FlowVar))
			}
		}(i)
	}
	wg.Wait()

	// Assert
	for i := 1; i < len(results); i++ {
		for j := range names {
			if results[i][j] != results[0][j] {
				t.Fatalf("Goroutine %d got index %d for %s, expected %d", i, results[i][j], names[j], results[0][j])
			}
		}
	}

	if s.Len() != len(names) {
		t.Fatalf("Unexpected len: %d", s.Len())
	}
}
