// Package flowvars stages flow variable captures during evaluation and commits them once a signature matched.
package flowvars

import (
	"nidscore/flow"
)

// PendingStore holds the captures staged while one worker evaluates one packet.
// It belongs to a single worker and is not safe for concurrent use.
type PendingStore struct {
	entries map[uint32][]byte
}

// NewPendingStore creates an empty PendingStore.
func NewPendingStore() *PendingStore {
	return &PendingStore{entries: make(map[uint32][]byte)}
}

// Stage records value for idx, dropping any earlier value staged for the same index. The store takes ownership of value.
func (p *PendingStore) Stage(idx uint32, value []byte) {
	p.entries[idx] = value
}

// Take removes and returns the staged value for idx.
func (p *PendingStore) Take(idx uint32) (value []byte, ok bool) {
	value, ok = p.entries[idx]
	if ok {
		delete(p.entries, idx)
	}
	return
}

// Peek returns the staged value for idx without removing it.
func (p *PendingStore) Peek(idx uint32) (value []byte, ok bool) {
	value, ok = p.entries[idx]
	return
}

// Len is the number of staged values.
func (p *PendingStore) Len() int { return len(p.entries) }

// Clear drops every staged value. Called after each packet, whatever the outcome.
func (p *PendingStore) Clear() {
	clear(p.entries)
}

// Commit moves the value staged for idx into the flow, under the flow's write lock.
// Without a staged value, or without a flow, nothing happens.
func Commit(f *flow.Flow, p *PendingStore, idx uint32) bool {
	if f == nil {
		return false
	}

	v, ok := p.Take(idx)
	if !ok {
		return false
	}

	f.StoreVar(idx, v)
	return true
}
