// Package detect holds the types shared by the signature compiler, the evaluator and the engine.
package detect

import (
	"time"

	"nidscore/detect/ast"
	"nidscore/flow"
)

// Result is the outcome of evaluating a node, a list or a signature.
type Result int

// Results. Error is a stronger form of NoMatch: evaluation stops and nothing is committed.
const (
	NoMatch Result = iota
	Match
	Error
)

func (r Result) String() string {
	switch r {
	case NoMatch:
		return "nomatch"
	case Match:
		return "match"
	case Error:
		return "error"
	}
	return "unknown"
}

// BufferProvider gives the evaluator the buffer a match list is inspected against.
type BufferProvider interface {
	// Buffer returns the buffer for list, and false if this packet does not have it.
	Buffer(list ast.ListID) ([]byte, bool)
}

// Packet is what the engine inspects: a payload plus whatever the protocol parsers extracted from it.
type Packet struct {
	FlowKey flow.Key
	Flow    *flow.Flow

	Payload []byte
	// HTTP buffers keyed by their list.
	HTTP map[ast.ListID][]byte
	// DCEStub is set for DCERPC traffic, possibly empty.
	DCEStub  []byte
	IsDCE    bool
	DCEIface string
}

// Buffer implements BufferProvider.
func (p *Packet) Buffer(list ast.ListID) ([]byte, bool) {
	switch {
	case list == ast.ListPayload:
		return p.Payload, true
	case list == ast.ListDCEStub:
		return p.DCEStub, p.IsDCE
	case list.IsHTTP():
		b, ok := p.HTTP[list]
		return b, ok
	}
	return nil, false
}

// Alert is raised when a signature matched a packet.
type Alert struct {
	Time time.Time
	SID  uint32
	Rev  uint32
	Msg  string
	Flow flow.Key
}
