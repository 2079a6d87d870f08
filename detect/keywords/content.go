package keywords

import (
	"fmt"
	"strconv"
	"strings"

	"nidscore/detect/ast"

	"golang.org/x/xerrors"
)

// decodeContent turns a content string into bytes. A '|' toggles hex mode, in which pairs of hex
// digits become one byte each and spaces are ignored. Outside hex mode a backslash escapes the next character.
func decodeContent(s string) (b []byte, err error) {
	b = make([]byte, 0, len(s))
	hexMode := false
	half := false
	var hi byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '|':
			if hexMode && half {
				err = xerrors.Errorf("odd number of hex digits in %q: %w", s, ErrSyntax)
				return
			}
			hexMode = !hexMode
		case hexMode && c == ' ':
		case hexMode && isHex(c):
			if half {
				b = append(b, hi<<4|unhex(c))
			} else {
				hi = unhex(c)
			}
			half = !half
		case hexMode:
			err = xerrors.Errorf("invalid hex character %q in %q: %w", c, s, ErrSyntax)
			return
		case c == '\\' && i+1 < len(s):
			i++
			b = append(b, s[i])
		default:
			b = append(b, c)
		}
	}

	if hexMode {
		err = xerrors.Errorf("unterminated hex run in %q: %w", s, ErrSyntax)
		return
	}

	if len(b) == 0 {
		err = ErrEmptyContent
		return
	}

	return
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	}
	return c - 'A' + 10
}

func setupContent(c *compilerImpl, s *ast.Signature, args string) (err error) {
	d := &ast.Content{}

	args = strings.TrimSpace(args)
	if strings.HasPrefix(args, "!") {
		d.Negated = true
		args = strings.TrimSpace(args[1:])
	}

	raw, quoted := unquote(args)
	if !quoted {
		err = xerrors.Errorf("content %s must be quoted: %w", args, ErrSyntax)
		return
	}

	d.Pattern, err = decodeContent(raw)
	if err != nil {
		return
	}

	d.Searcher, err = c.backend.Compile(d.Pattern, false)
	if err != nil {
		return
	}

	s.Append(s.Init.Buffer, d)
	return
}

// lastContent finds the content a modifier applies to.
func lastContent(s *ast.Signature, modifier string) (n *ast.MatchNode, d *ast.Content, err error) {
	n = lastOfKindsAnyList(s, ast.KindContent)
	if n == nil {
		err = xerrors.Errorf("%s needs a preceding content: %w", modifier, ErrSyntax)
		return
	}
	d = n.Desc.(*ast.Content)
	return
}

func setupNocase(c *compilerImpl, s *ast.Signature, args string) (err error) {
	_, d, err := lastContent(s, "nocase")
	if err != nil {
		return
	}

	d.Nocase = true
	d.Searcher, err = c.backend.Compile(d.Pattern, true)
	return
}

func parseModifierInt(name string, args string, min, max int64) (v int64, err error) {
	v, err = strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || v < min || v > max {
		err = xerrors.Errorf("%s %q: %w", name, args, ErrOutOfRange)
	}
	return
}

func setupOffset(c *compilerImpl, s *ast.Signature, args string) (err error) {
	_, d, err := lastContent(s, "offset")
	if err != nil {
		return
	}

	if d.Relative {
		return xerrors.Errorf("offset can not be combined with distance or within: %w", ErrSyntax)
	}

	v, err := parseModifierInt("offset", args, 0, 65535)
	if err != nil {
		return
	}
	d.Offset = uint16(v)
	return
}

func setupDepth(c *compilerImpl, s *ast.Signature, args string) (err error) {
	_, d, err := lastContent(s, "depth")
	if err != nil {
		return
	}

	if d.Relative {
		return xerrors.Errorf("depth can not be combined with distance or within: %w", ErrSyntax)
	}

	v, err := parseModifierInt("depth", args, 1, 65535)
	if err != nil {
		return
	}

	if int(v) < len(d.Pattern) {
		return xerrors.Errorf("depth %d is smaller than content length %d: %w", v, len(d.Pattern), ErrOutOfRange)
	}
	d.Depth = uint16(v)
	return
}

// makeRelative marks a content as positioned after the previous match in its list, and flags that match.
func makeRelative(s *ast.Signature, n *ast.MatchNode, d *ast.Content, modifier string) error {
	if d.Offset != 0 || d.Depth != 0 {
		return xerrors.Errorf("%s can not be combined with offset or depth: %w", modifier, ErrSyntax)
	}

	nodes := s.Lists[n.List]
	var prev *ast.MatchNode
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i] == n {
			prev = lastOfKinds(nodes[:i], ast.KindContent, ast.KindPcre, ast.KindByteJump)
			break
		}
	}

	if prev == nil {
		return xerrors.Errorf("%s needs a preceding content, pcre or byte_jump in %s: %w", modifier, n.List, ErrNoAnchor)
	}

	d.Relative = true
	flagRelativeFollower(prev)
	return nil
}

func setupDistance(c *compilerImpl, s *ast.Signature, args string) (err error) {
	n, d, err := lastContent(s, "distance")
	if err != nil {
		return
	}

	v, err := parseModifierInt("distance", args, -65535, 65535)
	if err != nil {
		return
	}

	if err = makeRelative(s, n, d, "distance"); err != nil {
		return
	}
	d.Distance = int32(v)
	return
}

func setupWithin(c *compilerImpl, s *ast.Signature, args string) (err error) {
	n, d, err := lastContent(s, "within")
	if err != nil {
		return
	}

	v, err := parseModifierInt("within", args, 1, 65535)
	if err != nil {
		return
	}

	if int(v) < len(d.Pattern) {
		return xerrors.Errorf("within %d is smaller than content length %d: %w", v, len(d.Pattern), ErrOutOfRange)
	}

	if err = makeRelative(s, n, d, "within"); err != nil {
		return
	}
	d.Within = uint16(v)
	d.HasWithin = true
	return
}

// setupHTTPModifier returns the setup for a content modifier such as http_uri that moves the last payload content to another list.
func setupHTTPModifier(list ast.ListID) setupFunc {
	return func(c *compilerImpl, s *ast.Signature, args string) error {
		if args != "" {
			return xerrors.Errorf("%s takes no arguments: %w", list, ErrSyntax)
		}

		n := lastOfKinds(s.Lists[ast.ListPayload], ast.KindContent)
		if n == nil {
			return xerrors.Errorf("%s needs a preceding content: %w", list, ErrSyntax)
		}

		if d := n.Desc.(*ast.Content); d.Relative {
			// The previous content it was relative to stays in the payload list.
			return fmt.Errorf("%s can not be applied to a content using distance or within", list)
		}

		s.Move(n, list)
		s.Flags |= ast.FlagAppLayer
		if list == ast.ListHTTPServerBody {
			s.Flags |= ast.FlagResponseBodyInspection
		}
		return nil
	}
}
