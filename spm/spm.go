// Package spm provides single pattern search over byte buffers, plus the regex engine used by the pcre keyword.
package spm

import (
	"sort"
	"sync"

	"golang.org/x/xerrors"
)

// Portable is the name of the backend that works everywhere.
const Portable = "portable"

// ErrUnknownBackend is returned by New for names that were never registered.
var ErrUnknownBackend = xerrors.New("spm: unknown pattern search backend")

// Pattern is a compiled needle that can be searched for in many haystacks. Patterns are safe for concurrent use.
type Pattern interface {
	// Index returns the offset of the first occurrence of the pattern in haystack, or -1. An error means the
	// search could not run, not that the pattern is absent.
	Index(haystack []byte) (int, error)
	// Len is the length of the needle.
	Len() int
}

// Backend compiles needles into Patterns.
type Backend interface {
	Name() string
	Compile(needle []byte, nocase bool) (Pattern, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() (Backend, error){}
)

// Register makes a backend constructor available to New.
func Register(name string, ctor func() (Backend, error)) {
	registryMu.Lock()
	registry[name] = ctor
	registryMu.Unlock()
}

// New returns the backend registered under name.
func New(name string) (Backend, error) {
	registryMu.RLock()
	ctor, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, xerrors.Errorf("%q: %w", name, ErrUnknownBackend)
	}
	return ctor()
}

// Names lists registered backend names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(Portable, func() (Backend, error) { return portableBackend{}, nil })
}
