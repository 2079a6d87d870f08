package varname

import (
	"fmt"
	"sync"
)

// Kind is the keyword family a variable name belongs to. The same name used by two kinds gets two indexes.
type Kind int

// Variable kinds.
const (
	FlowVar Kind = iota + 1
	PktVar
	FlowInt
)

var kindNames = map[Kind]string{
	FlowVar: "flowvar",
	PktVar:  "pktvar",
	FlowInt: "flowint",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type key struct {
	name string
	kind Kind
}

type entry struct {
	name string
	kind Kind
}

// Store maps variable names to stable integer indexes for the lifetime of an engine.
type Store interface {
	// Intern returns the index for name and kind, allocating one on first use. Indexes start at 1.
	Intern(name string, kind Kind) uint32
	// Lookup returns the name and kind an index was allocated for.
	Lookup(idx uint32) (name string, kind Kind, ok bool)
	// Len is the number of allocated indexes.
	Len() int
}

type storeImpl struct {
	mu      sync.RWMutex
	indexes map[key]uint32
	entries []entry
}

// NewStore creates an empty Store.
func NewStore() Store {
	return &storeImpl{
		indexes: make(map[key]uint32),
		entries: []entry{{}},
	}
}

func (s *storeImpl) Intern(name string, kind Kind) uint32 {
	k := key{name: name, kind: kind}

	s.mu.RLock()
	idx, ok := s.indexes[k]
	s.mu.RUnlock()
	if ok {
		return idx
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Someone may have raced us between the locks.
	if idx, ok = s.indexes[k]; ok {
		return idx
	}

	idx = uint32(len(s.entries))
	s.entries = append(s.entries, entry{name: name, kind: kind})
	s.indexes[k] = idx
	return idx
}

func (s *storeImpl) Lookup(idx uint32) (name string, kind Kind, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx == 0 || int(idx) >= len(s.entries) {
		return
	}

	e := s.entries[idx]
	return e.name, e.kind, true
}

func (s *storeImpl) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries) - 1
}
