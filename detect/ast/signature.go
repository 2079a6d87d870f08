// Package ast holds the compiled form of signatures.
package ast

// SigFlag is a set of signature properties.
type SigFlag uint32

// Signature flags.
const (
	// FlagAppLayer means the signature inspects application layer buffers.
	FlagAppLayer SigFlag = 1 << iota
	// FlagResponseBodyInspection means the HTTP parser must keep server bodies for this signature.
	FlagResponseBodyInspection
	// FlagDCERPC means the signature only applies to DCERPC traffic.
	FlagDCERPC
)

// InitState is the compile-time context of a signature. It is not used after compilation.
type InitState struct {
	// Buffer is the list content-like keywords currently go to.
	Buffer ListID
	// FileData is set once file_data was seen.
	FileData bool
	// DCE is set once a dce_* keyword was seen.
	DCE bool
}

// MatchNode is one keyword in a match list.
type MatchNode struct {
	// Seq is the compile order of the node within its signature.
	Seq  int
	List ListID
	Desc Descriptor

	// HasRelativeFollower is set on a content or pcre node when a later node is positioned relative to it.
	HasRelativeFollower bool
}

// Signature is a compiled rule.
type Signature struct {
	ID  uint32
	Rev uint32
	Msg string

	// DCEIface restricts the signature to one DCERPC interface uuid when set.
	DCEIface string

	Lists [ListCount][]*MatchNode
	Flags SigFlag
	Init  InitState

	// ByteExtractCount is the number of byte_extract variables. Local ids are 0..ByteExtractCount-1.
	ByteExtractCount int

	seq int
}

// NewSignature creates an empty signature with the payload as the active buffer.
func NewSignature() *Signature {
	return &Signature{Init: InitState{Buffer: ListPayload}}
}

// Append adds a node to the end of a list and returns it.
func (s *Signature) Append(list ListID, d Descriptor) *MatchNode {
	n := &MatchNode{Seq: s.seq, List: list, Desc: d}
	s.seq++
	s.Lists[list] = append(s.Lists[list], n)
	return n
}

// Last returns the last node of a list, or nil.
func (s *Signature) Last(list ListID) *MatchNode {
	l := s.Lists[list]
	if len(l) == 0 {
		return nil
	}
	return l[len(l)-1]
}

// Move removes n from its list and appends it to another one, keeping its sequence number.
func (s *Signature) Move(n *MatchNode, to ListID) {
	from := s.Lists[n.List]
	for i, m := range from {
		if m == n {
			s.Lists[n.List] = append(from[:i:i], from[i+1:]...)
			break
		}
	}

	n.List = to
	s.Lists[to] = append(s.Lists[to], n)
}

// Has reports whether the signature has the flag set.
func (s *Signature) Has(f SigFlag) bool { return s.Flags&f != 0 }

// NodeCount is the total number of nodes over all lists.
func (s *Signature) NodeCount() (n int) {
	for _, l := range s.Lists {
		n += len(l)
	}
	return
}
