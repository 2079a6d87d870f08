package keywords

import (
	"regexp"
	"strconv"
	"strings"

	"nidscore/detect/ast"

	"golang.org/x/xerrors"
)

const (
	maxBinaryBytes = 8
	maxStringBytes = 23
)

var byteVarNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var byteTestOps = map[string]ast.ByteTestOp{
	"<":  ast.OpLess,
	">":  ast.OpGreater,
	"=":  ast.OpEqual,
	"&":  ast.OpAnd,
	"^":  ast.OpOr,
	"<=": ast.OpLessEqual,
	">=": ast.OpGreaterEqual,
}

var numberBases = map[string]int{
	"hex": 16,
	"dec": 10,
	"oct": 8,
}

// byteOptions are the trailing options shared by byte_jump, byte_test and byte_extract.
type byteOptions struct {
	relative      bool
	bigEndian     bool
	str           bool
	base          int
	align         int
	fromBeginning bool
	multiplier    uint32
	postOffset    int32
}

// Parse the trailing options of a byte keyword. allowed holds the option names the keyword accepts.
func parseByteOptions(keyword string, tokens []string, allowed ...string) (o byteOptions, err error) {
	o.bigEndian = true
	o.multiplier = 1

	isAllowed := func(name string) bool {
		for _, a := range allowed {
			if a == name {
				return true
			}
		}
		return false
	}

	for i := 0; i < len(tokens); i++ {
		fields := strings.Fields(tokens[i])
		if len(fields) == 0 {
			err = xerrors.Errorf("%s: empty option: %w", keyword, ErrSyntax)
			return
		}

		name := strings.ToLower(fields[0])
		if !isAllowed(name) {
			err = xerrors.Errorf("%s: unsupported option %q: %w", keyword, tokens[i], ErrSyntax)
			return
		}

		switch name {
		case "relative":
			o.relative = true
		case "big":
			o.bigEndian = true
		case "little":
			o.bigEndian = false
		case "string":
			o.str = true
			o.base = 10
			// The base is an optional separate token.
			if i+1 < len(tokens) {
				if b, ok := numberBases[strings.ToLower(strings.TrimSpace(tokens[i+1]))]; ok {
					o.base = b
					i++
				}
			}
		case "align":
			o.align = 4
			if len(fields) > 1 {
				var v int64
				v, err = strconv.ParseInt(fields[1], 10, 8)
				if err != nil || (v != 2 && v != 4) {
					err = xerrors.Errorf("%s: align must be 2 or 4: %w", keyword, ErrOutOfRange)
					return
				}
				o.align = int(v)
			}
		case "from_beginning":
			o.fromBeginning = true
		case "multiplier":
			var v uint64
			if len(fields) == 2 {
				v, err = strconv.ParseUint(fields[1], 10, 16)
			}
			if len(fields) != 2 || err != nil || v == 0 {
				err = xerrors.Errorf("%s: multiplier %q: %w", keyword, tokens[i], ErrOutOfRange)
				return
			}
			o.multiplier = uint32(v)
		case "post_offset":
			var v int64
			if len(fields) == 2 {
				v, err = strconv.ParseInt(fields[1], 10, 32)
			}
			if len(fields) != 2 || err != nil {
				err = xerrors.Errorf("%s: post_offset %q: %w", keyword, tokens[i], ErrOutOfRange)
				return
			}
			o.postOffset = int32(v)
		}
	}

	return
}

func splitArgs(args string) []string {
	parts := strings.Split(args, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseNumBytes(keyword, s string, str bool) (n int, err error) {
	v, err := strconv.ParseUint(s, 10, 8)
	limit := maxBinaryBytes
	if str {
		limit = maxStringBytes
	}
	if err != nil || v == 0 || int(v) > limit {
		err = xerrors.Errorf("%s: number of bytes %q must be between 1 and %d: %w", keyword, s, limit, ErrOutOfRange)
		return
	}
	return int(v), nil
}

func parseOffset(keyword, s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil || v < -65535 || v > 65535 {
		return 0, xerrors.Errorf("%s: offset %q: %w", keyword, s, ErrOutOfRange)
	}
	return int32(v), nil
}

// A relative byte keyword depends on where the previous content or pcre in its list matched.
func flagPreviousInList(s *ast.Signature, list ast.ListID) {
	if prev := lastOfKinds(s.Lists[list], ast.KindContent, ast.KindPcre); prev != nil {
		flagRelativeFollower(prev)
	}
}

func setupByteJump(c *compilerImpl, s *ast.Signature, args string) (err error) {
	t := splitArgs(args)
	if len(t) < 2 {
		return xerrors.Errorf("byte_jump %q: %w", args, ErrSyntax)
	}

	o, err := parseByteOptions("byte_jump", t[2:], "relative", "big", "little", "string", "align", "from_beginning", "multiplier", "post_offset")
	if err != nil {
		return
	}

	d := &ast.ByteJump{
		NumberFormat:  ast.NumberFormat{BigEndian: o.bigEndian, String: o.str, Base: o.base},
		Relative:      o.relative,
		Align:         o.align != 0,
		FromBeginning: o.fromBeginning,
		Multiplier:    o.multiplier,
		PostOffset:    o.postOffset,
	}

	if d.Bytes, err = parseNumBytes("byte_jump", t[0], o.str); err != nil {
		return
	}
	if d.Offset, err = parseOffset("byte_jump", t[1]); err != nil {
		return
	}

	list := s.Init.Buffer
	if d.Relative {
		flagPreviousInList(s, list)
	}

	s.Append(list, d)
	return
}

func setupByteTest(c *compilerImpl, s *ast.Signature, args string) (err error) {
	t := splitArgs(args)
	if len(t) < 4 {
		return xerrors.Errorf("byte_test %q: %w", args, ErrSyntax)
	}

	o, err := parseByteOptions("byte_test", t[4:], "relative", "big", "little", "string")
	if err != nil {
		return
	}

	d := &ast.ByteTest{
		NumberFormat: ast.NumberFormat{BigEndian: o.bigEndian, String: o.str, Base: o.base},
		Relative:     o.relative,
	}

	if d.Bytes, err = parseNumBytes("byte_test", t[0], o.str); err != nil {
		return
	}

	op := strings.TrimSpace(t[1])
	if strings.HasPrefix(op, "!") {
		d.Negated = true
		op = strings.TrimSpace(op[1:])
		if op == "" {
			op = "="
		}
	}

	var ok bool
	if d.Op, ok = byteTestOps[op]; !ok {
		return xerrors.Errorf("byte_test: unknown operator %q: %w", t[1], ErrSyntax)
	}

	if d.Value, err = strconv.ParseUint(t[2], 0, 64); err != nil {
		return xerrors.Errorf("byte_test: value %q: %w", t[2], ErrOutOfRange)
	}

	if d.Offset, err = parseOffset("byte_test", t[3]); err != nil {
		return
	}

	list := s.Init.Buffer
	if d.Relative {
		flagPreviousInList(s, list)
	}

	s.Append(list, d)
	return
}

func setupByteExtract(c *compilerImpl, s *ast.Signature, args string) (err error) {
	t := splitArgs(args)
	if len(t) < 3 {
		return xerrors.Errorf("byte_extract %q: %w", args, ErrSyntax)
	}

	o, err := parseByteOptions("byte_extract", t[3:], "relative", "big", "little", "string", "align", "multiplier")
	if err != nil {
		return
	}

	d := &ast.ByteExtract{
		NumberFormat: ast.NumberFormat{BigEndian: o.bigEndian, String: o.str, Base: o.base},
		Name:         t[2],
		Relative:     o.relative,
		Align:        o.align,
		Multiplier:   o.multiplier,
	}

	if d.Bytes, err = parseNumBytes("byte_extract", t[0], o.str); err != nil {
		return
	}
	if d.Offset, err = parseOffset("byte_extract", t[1]); err != nil {
		return
	}

	if !byteVarNameRegex.MatchString(d.Name) {
		return xerrors.Errorf("byte_extract: invalid variable name %q: %w", d.Name, ErrSyntax)
	}

	for l := range s.Lists {
		if _, dup := resolveByteExtract(s, ast.ListID(l), d.Name); dup {
			return xerrors.Errorf("byte_extract: variable %q already defined: %w", d.Name, ErrSyntax)
		}
	}

	d.LocalID = s.ByteExtractCount
	s.ByteExtractCount++

	list := s.Init.Buffer
	if d.Relative {
		flagPreviousInList(s, list)
	}

	s.Append(list, d)
	return
}
