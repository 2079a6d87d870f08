package flow

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Table is a bounded set of flows. When full, the least recently seen flow is evicted and recycled.
type Table struct {
	mu      sync.Mutex
	cache   *lru.Cache[Key, *Flow]
	onEvict func(f *Flow)
}

// NewTable creates a Table holding at most size flows. onEvict may be nil.
func NewTable(size int, onEvict func(f *Flow)) (t *Table, err error) {
	if size <= 0 {
		err = fmt.Errorf("flow table size must be positive, got %d", size)
		return
	}

	t = &Table{onEvict: onEvict}
	t.cache, err = lru.NewWithEvict[Key, *Flow](size, t.evicted)
	if err != nil {
		t = nil
		return
	}

	return
}

func (t *Table) evicted(key Key, f *Flow) {
	f.Recycle()
	if t.onEvict != nil {
		t.onEvict(f)
	}
}

// Get returns the flow for key, creating it if it is not in the table.
func (t *Table) Get(key Key) *Flow {
	key = key.Normalize()

	t.mu.Lock()
	defer t.mu.Unlock()

	if f, ok := t.cache.Get(key); ok {
		return f
	}

	f := New(key)
	t.cache.Add(key, f)
	return f
}

// Peek returns the flow for key without creating it or touching its recency.
func (t *Table) Peek(key Key) (*Flow, bool) {
	return t.cache.Peek(key.Normalize())
}

// Len is the number of flows in the table.
func (t *Table) Len() int {
	return t.cache.Len()
}

// Purge evicts every flow.
func (t *Table) Purge() {
	t.mu.Lock()
	t.cache.Purge()
	t.mu.Unlock()
}
