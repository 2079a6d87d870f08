package ast

import (
	"nidscore/spm"
)

// Kind is the keyword kind of a match node.
type Kind int

// Keyword kinds.
const (
	KindContent Kind = iota + 1
	KindPcre
	KindByteJump
	KindByteTest
	KindByteExtract
	KindIsDataAt
	KindFlowVar
	KindFlowVarCapture
	KindFlowVarPostMatch
)

var kindNames = map[Kind]string{
	KindContent:          "content",
	KindPcre:             "pcre",
	KindByteJump:         "byte_jump",
	KindByteTest:         "byte_test",
	KindByteExtract:      "byte_extract",
	KindIsDataAt:         "isdataat",
	KindFlowVar:          "flowvar",
	KindFlowVarCapture:   "flowvar_set",
	KindFlowVarPostMatch: "flowvar_postmatch",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Descriptor is the immutable, compiled form of one keyword.
type Descriptor interface {
	Kind() Kind
}

// Content is a literal byte match.
type Content struct {
	Pattern []byte
	Nocase  bool
	Negated bool

	Offset uint16
	Depth  uint16

	// Distance and Within are relative to the end of the previous match in the list.
	Relative  bool
	Distance  int32
	Within    uint16
	HasWithin bool

	Searcher spm.Pattern
}

// Kind implements Descriptor.
func (*Content) Kind() Kind { return KindContent }

// Pcre is a regular expression match.
type Pcre struct {
	Expr     string
	Negated  bool
	Relative bool
	Regex    spm.Regex
}

// Kind implements Descriptor.
func (*Pcre) Kind() Kind { return KindPcre }

// NumberFormat describes how a byte keyword reads a number from the buffer.
type NumberFormat struct {
	Bytes     int
	BigEndian bool
	String    bool
	Base      int
}

// ByteJump reads a number and moves the inspection cursor by it.
type ByteJump struct {
	NumberFormat
	Offset        int32
	Relative      bool
	Align         bool
	FromBeginning bool
	Multiplier    uint32
	PostOffset    int32
}

// Kind implements Descriptor.
func (*ByteJump) Kind() Kind { return KindByteJump }

// ByteTestOp is the comparison done by byte_test.
type ByteTestOp int

// byte_test operators.
const (
	OpLess ByteTestOp = iota + 1
	OpGreater
	OpEqual
	OpAnd
	OpOr
	OpLessEqual
	OpGreaterEqual
)

// ByteTest reads a number and compares it to a value.
type ByteTest struct {
	NumberFormat
	Op       ByteTestOp
	Negated  bool
	Value    uint64
	Offset   int32
	Relative bool
}

// Kind implements Descriptor.
func (*ByteTest) Kind() Kind { return KindByteTest }

// ByteExtract reads a number into a signature-local variable.
type ByteExtract struct {
	NumberFormat
	Name       string
	LocalID    int
	Offset     int32
	Relative   bool
	Align      int
	Multiplier uint32
}

// Kind implements Descriptor.
func (*ByteExtract) Kind() Kind { return KindByteExtract }

// IsDataAt checks that the buffer holds data at a position.
type IsDataAt struct {
	// Offset is used when OffsetVar is empty.
	Offset uint16
	// OffsetVar names a byte_extract variable, resolved into OffsetLocalID at compile time.
	OffsetVar     string
	OffsetLocalID int

	Relative bool
	RawBytes bool
	Negated  bool
}

// Kind implements Descriptor.
func (*IsDataAt) Kind() Kind { return KindIsDataAt }

// IsVar is true when the offset comes from a byte_extract variable.
func (d *IsDataAt) IsVar() bool { return d.OffsetVar != "" }

// FlowVar compares a stored flow variable to content.
type FlowVar struct {
	Name     string
	VarIndex uint32
	Content  []byte
	Searcher spm.Pattern
}

// Kind implements Descriptor.
func (*FlowVar) Kind() Kind { return KindFlowVar }

// FlowVarCapture matches content in the buffer and stages it for storing in a flow variable.
type FlowVarCapture struct {
	Name     string
	VarIndex uint32
	Content  []byte
	Searcher spm.Pattern
}

// Kind implements Descriptor.
func (*FlowVarCapture) Kind() Kind { return KindFlowVarCapture }

// FlowVarPostMatch commits the staged capture for VarIndex.
type FlowVarPostMatch struct {
	VarIndex uint32
}

// Kind implements Descriptor.
func (*FlowVarPostMatch) Kind() Kind { return KindFlowVarPostMatch }
