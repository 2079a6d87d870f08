package evaluation

import (
	"fmt"

	"nidscore/detect"
	"nidscore/detect/ast"
	"nidscore/flow"
)

// inspection is the state of one list being run against one buffer.
type inspection struct {
	tctx *ThreadCtx
	buf  []byte
	flow *flow.Flow

	// err describes why the inspection returned Error.
	err error
}

// nextFunc finds the next occurrence of an anchor starting at or after from.
type nextFunc func(from int) (start, end int, found bool, err error)

// run evaluates nodes in order. cursor is the end of the previous match and is where relative keywords start.
func (in *inspection) run(nodes []*ast.MatchNode, cursor int) detect.Result {
	for i, n := range nodes {
		switch d := n.Desc.(type) {
		case *ast.Content:
			next := func(from int) (int, int, bool, error) {
				return findContent(d, in.buf, cursor, from)
			}
			start, end, found, err := next(0)
			if err != nil {
				in.err = err
				return detect.Error
			}
			if d.Negated {
				if found {
					return detect.NoMatch
				}
				continue
			}
			if !found {
				return detect.NoMatch
			}
			if n.HasRelativeFollower {
				return in.retry(nodes[i+1:], start, end, next)
			}
			cursor = end

		case *ast.Pcre:
			next := func(from int) (int, int, bool, error) {
				return findPcre(d, in.buf, cursor, from)
			}
			start, end, found, err := next(0)
			if err != nil {
				in.err = err
				return detect.Error
			}
			if d.Negated {
				if found {
					return detect.NoMatch
				}
				continue
			}
			if !found {
				return detect.NoMatch
			}
			if n.HasRelativeFollower {
				return in.retry(nodes[i+1:], start, end, next)
			}
			cursor = end

		case *ast.ByteJump:
			c, ok := byteJump(d, in.buf, cursor)
			if !ok {
				return detect.NoMatch
			}
			cursor = c

		case *ast.ByteTest:
			if !byteTest(d, in.buf, cursor) {
				return detect.NoMatch
			}

		case *ast.ByteExtract:
			v, end, ok := byteExtract(d, in.buf, cursor)
			if !ok {
				return detect.NoMatch
			}
			if !in.tctx.setByteValue(d.LocalID, v) {
				in.err = fmt.Errorf("byte_extract %s: local id %d out of range", d.Name, d.LocalID)
				return detect.Error
			}
			cursor = end

		case *ast.IsDataAt:
			if r := in.isDataAt(d); r != detect.Match {
				return r
			}

		case *ast.FlowVar:
			found, err := in.flowVar(d)
			if err != nil {
				in.err = err
				return detect.Error
			}
			if !found {
				return detect.NoMatch
			}

		case *ast.FlowVarCapture:
			idx, err := d.Searcher.Index(in.buf)
			if err != nil {
				in.err = err
				return detect.Error
			}
			if idx < 0 {
				return detect.NoMatch
			}
			in.tctx.Pending.Stage(d.VarIndex, append([]byte(nil), d.Content...))
			cursor = idx + len(d.Content)

		case *ast.FlowVarPostMatch:
			// Runs in the post-match step only.

		default:
			in.err = fmt.Errorf("unsupported node %T", n.Desc)
			return detect.Error
		}
	}

	return detect.Match
}

// retry runs rest after an anchor matched at [start, end). When rest does not match, the anchor is searched again
// past start and rest is retried, until the anchor runs out of occurrences or the retry budget is spent.
func (in *inspection) retry(rest []*ast.MatchNode, start, end int, next nextFunc) detect.Result {
	for {
		r := in.run(rest, end)
		if r != detect.NoMatch {
			return r
		}

		if in.tctx.retriesLeft <= 0 {
			return detect.NoMatch
		}
		in.tctx.retriesLeft--

		var found bool
		var err error
		start, end, found, err = next(start + 1)
		if err != nil {
			in.err = err
			return detect.Error
		}
		if !found {
			return detect.NoMatch
		}
	}
}

func (in *inspection) isDataAt(d *ast.IsDataAt) detect.Result {
	// The anchor's relative search already did the positional check.
	if d.Relative {
		return detect.Match
	}

	offset := uint64(d.Offset)
	if d.IsVar() {
		v, ok := in.tctx.ByteValue(d.OffsetLocalID)
		if !ok {
			in.err = fmt.Errorf("isdataat: byte_extract variable %s not set", d.OffsetVar)
			return detect.Error
		}
		offset = v
	}

	match := uint64(len(in.buf)) >= offset
	if match != d.Negated {
		return detect.Match
	}
	return detect.NoMatch
}

func (in *inspection) flowVar(d *ast.FlowVar) (found bool, err error) {
	if in.flow == nil {
		return false, nil
	}

	in.flow.ReadVar(d.VarIndex, func(v []byte) {
		var idx int
		idx, err = d.Searcher.Index(v)
		found = idx >= 0
	})
	return
}

// findContent searches the window d allows, starting no earlier than from.
func findContent(d *ast.Content, buf []byte, cursor, from int) (start, end int, found bool, err error) {
	winStart, winEnd := 0, len(buf)
	if d.Relative {
		winStart = cursor + int(d.Distance)
		if d.HasWithin {
			winEnd = winStart + int(d.Within)
		}
		if winStart < 0 {
			winStart = 0
		}
	} else {
		winStart = int(d.Offset)
		if d.Depth > 0 {
			winEnd = int(d.Offset) + int(d.Depth)
		}
	}

	if winEnd > len(buf) {
		winEnd = len(buf)
	}
	if from > winStart {
		winStart = from
	}
	if winEnd-winStart < len(d.Pattern) {
		return 0, 0, false, nil
	}

	idx, err := d.Searcher.Index(buf[winStart:winEnd])
	if err != nil || idx < 0 {
		return 0, 0, false, err
	}

	start = winStart + idx
	return start, start + len(d.Pattern), true, nil
}

func findPcre(d *ast.Pcre, buf []byte, cursor, from int) (start, end int, found bool, err error) {
	base := 0
	if d.Relative {
		base = cursor
	}
	if from > base {
		base = from
	}
	if base > len(buf) {
		return 0, 0, false, nil
	}

	loc, err := d.Regex.FindIndex(buf[base:])
	if err != nil || loc == nil {
		return 0, 0, false, err
	}

	return base + loc[0], base + loc[1], true, nil
}
