package flow

import (
	"fmt"
	"sync"
)

// Key identifies a connection. Use Normalize so both directions of a connection map to the same Key.
type Key struct {
	Proto   string
	SrcIP   string
	SrcPort uint16
	DstIP   string
	DstPort uint16
}

// Normalize orders the two endpoints so that the lower one is always the source.
func (k Key) Normalize() Key {
	if k.SrcIP > k.DstIP || (k.SrcIP == k.DstIP && k.SrcPort > k.DstPort) {
		k.SrcIP, k.DstIP = k.DstIP, k.SrcIP
		k.SrcPort, k.DstPort = k.DstPort, k.SrcPort
	}
	return k
}

func (k Key) String() string {
	return fmt.Sprintf("%s %s:%d-%s:%d", k.Proto, k.SrcIP, k.SrcPort, k.DstIP, k.DstPort)
}

// Flow is the state kept for one connection across packets.
// Variables are guarded by the flow's own reader/writer lock.
type Flow struct {
	Key Key

	mu   sync.RWMutex
	vars map[uint32][]byte
}

// New creates a Flow with no variables.
func New(key Key) *Flow {
	return &Flow{Key: key, vars: make(map[uint32][]byte)}
}

// ReadVar calls fn with the stored value for idx while holding the read lock.
// fn must not retain value. Returns false if no value is stored.
func (f *Flow) ReadVar(idx uint32, fn func(value []byte)) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.vars[idx]
	if !ok {
		return false
	}

	fn(v)
	return true
}

// StoreVar replaces the value for idx. The flow takes ownership of value.
func (f *Flow) StoreVar(idx uint32, value []byte) {
	f.mu.Lock()
	f.vars[idx] = value
	f.mu.Unlock()
}

// Var returns a copy of the stored value for idx.
func (f *Flow) Var(idx uint32) (value []byte, ok bool) {
	ok = f.ReadVar(idx, func(v []byte) {
		value = append([]byte(nil), v...)
	})
	return
}

// VarCount is the number of variables currently stored.
func (f *Flow) VarCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vars)
}

// Recycle drops all variables.
func (f *Flow) Recycle() {
	f.mu.Lock()
	f.vars = make(map[uint32][]byte)
	f.mu.Unlock()
}
