package keywords

import (
	"regexp"
	"strconv"
	"strings"

	"nidscore/detect/ast"

	"golang.org/x/xerrors"
)

var isdataatRegex = regexp.MustCompile(`^\s*!?([^\s,]+)\s*(,\s*relative)?\s*(,\s*rawbytes\s*)?\s*$`)

// parseIsDataAt parses `[!]<offset|var>[, relative][, rawbytes]`.
func parseIsDataAt(args string) (d *ast.IsDataAt, err error) {
	m := isdataatRegex.FindStringSubmatch(args)
	if m == nil {
		err = xerrors.Errorf("isdataat %q: %w", args, ErrSyntax)
		return
	}

	d = &ast.IsDataAt{}

	if strings.HasPrefix(strings.TrimSpace(args), "!") {
		d.Negated = true
	}

	if m[2] != "" {
		d.Relative = true
		if m[3] != "" {
			d.RawBytes = true
		}
	}

	offset := m[1]
	if isAlpha(offset[0]) {
		d.OffsetVar = offset
		return
	}

	n, perr := strconv.ParseUint(offset, 10, 16)
	if perr != nil {
		d = nil
		err = xerrors.Errorf("isdataat out of range %q: %w", offset, ErrOutOfRange)
		return
	}
	d.Offset = uint16(n)

	return
}

func setupIsDataAt(c *compilerImpl, s *ast.Signature, args string) (err error) {
	d, err := parseIsDataAt(args)
	if err != nil {
		return
	}

	var node, anchor *ast.MatchNode

	switch {
	case s.Init.DCE && d.Relative:
		anchor = dceAnchorScope.last(s)
		list := ast.ListDCEStub
		if anchor != nil {
			list = anchor.List
		}
		if anchor == nil && d.IsVar() {
			err = xerrors.Errorf("isdataat %q: %q without a preceding match in the dce buffers: %w", args, d.OffsetVar, ErrUnresolvedVar)
			return
		}
		node = s.Append(list, d)

	case s.Init.FileData:
		if d.Relative {
			anchor = fileDataAnchorScope.last(s)
			if anchor == nil {
				d.Relative = false
				d.RawBytes = false
			}
		}
		if anchor == nil && d.IsVar() {
			err = xerrors.Errorf("isdataat %q: %q without a preceding match in file_data: %w", args, d.OffsetVar, ErrUnresolvedVar)
			return
		}
		s.Flags |= ast.FlagAppLayer | ast.FlagResponseBodyInspection
		node = s.Append(ast.ListHTTPServerBody, d)

	case !d.Relative:
		node = s.Append(ast.ListPayload, d)

	default:
		anchor = genericAnchorScope.last(s)
		if anchor == nil {
			err = xerrors.Errorf("isdataat %q: no preceding content, pcre, byte_jump, byte_test or byte_extract: %w", args, ErrNoAnchor)
			return
		}
		node = s.Append(anchor.List, d)
	}

	if d.IsVar() {
		be, ok := resolveByteExtract(s, node.List, d.OffsetVar)
		if !ok {
			err = xerrors.Errorf("isdataat %q: %q in %s: %w", args, d.OffsetVar, node.List, ErrUnresolvedVar)
			return
		}
		d.OffsetLocalID = be.LocalID
	}

	if anchor != nil && d.Relative {
		flagRelativeFollower(anchor)
	}

	return
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
