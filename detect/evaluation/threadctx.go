package evaluation

import (
	"nidscore/detect/ast"
	"nidscore/detect/flowvars"
)

// ThreadCtx is the per-worker scratch state of the evaluator. One ThreadCtx must never be used by two goroutines at once.
type ThreadCtx struct {
	Pending *flowvars.PendingStore

	// byte_extract values of the signature being evaluated, indexed by local id.
	byteValues []uint64
	byteSet    []bool

	// Commits counts flow variable commits since the last EndPacket.
	Commits int

	// Anchor retries left for the list being inspected.
	retriesLeft int
}

// NewThreadCtx creates a ThreadCtx with an empty pending store.
func NewThreadCtx() *ThreadCtx {
	return &ThreadCtx{Pending: flowvars.NewPendingStore()}
}

// Begin prepares the context for evaluating s. EvalSignature calls it; callers using EvalList directly must call it first.
func (t *ThreadCtx) Begin(s *ast.Signature) {
	t.resetByteValues(s.ByteExtractCount)
}

func (t *ThreadCtx) resetByteValues(n int) {
	if cap(t.byteValues) < n {
		t.byteValues = make([]uint64, n)
		t.byteSet = make([]bool, n)
	}
	t.byteValues = t.byteValues[:n]
	t.byteSet = t.byteSet[:n]
	for i := range t.byteSet {
		t.byteSet[i] = false
		t.byteValues[i] = 0
	}
}

func (t *ThreadCtx) setByteValue(id int, v uint64) bool {
	if id < 0 || id >= len(t.byteValues) {
		return false
	}
	t.byteValues[id] = v
	t.byteSet[id] = true
	return true
}

// ByteValue returns the value a byte_extract stored under local id during the current signature evaluation.
func (t *ThreadCtx) ByteValue(id int) (uint64, bool) {
	if id < 0 || id >= len(t.byteValues) || !t.byteSet[id] {
		return 0, false
	}
	return t.byteValues[id], true
}

// EndPacket drops everything staged for the packet. Called after the full signature pass, whatever the outcome.
func (t *ThreadCtx) EndPacket() {
	t.Pending.Clear()
	t.Commits = 0
}
