package keywords

import (
	"regexp"
	"strings"

	"nidscore/detect/ast"
	"nidscore/spm"

	"golang.org/x/xerrors"
)

var pcreRegex = regexp.MustCompile(`^\s*(!)?\s*"?/(.*)/([A-Za-z]*)"?\s*$`)

var pcreBufferFlags = map[byte]ast.ListID{
	'U': ast.ListURI,
	'H': ast.ListHTTPHeader,
	'P': ast.ListHTTPClientBody,
	'Q': ast.ListHTTPServerBody,
	'M': ast.ListHTTPMethod,
	'C': ast.ListHTTPCookie,
}

func setupPcre(c *compilerImpl, s *ast.Signature, args string) (err error) {
	m := pcreRegex.FindStringSubmatch(args)
	if m == nil {
		err = xerrors.Errorf("pcre %s: %w", args, ErrSyntax)
		return
	}

	d := &ast.Pcre{Expr: m[2], Negated: m[1] == "!"}
	list := s.Init.Buffer
	var opts spm.RegexOptions

	for i := 0; i < len(m[3]); i++ {
		f := m[3][i]
		switch f {
		case 'i':
			opts.CaseInsensitive = true
		case 's':
			opts.DotAll = true
		case 'm':
			opts.MultiLine = true
		case 'x':
			opts.Extended = true
		case 'R':
			d.Relative = true
		default:
			l, ok := pcreBufferFlags[f]
			if !ok {
				err = xerrors.Errorf("pcre %s: unsupported flag %q: %w", args, f, ErrSyntax)
				return
			}
			list = l
			s.Flags |= ast.FlagAppLayer
		}
	}

	if strings.TrimSpace(d.Expr) == "" {
		err = xerrors.Errorf("pcre %s: empty expression: %w", args, ErrSyntax)
		return
	}

	d.Regex, err = spm.CompileRegex(d.Expr, opts)
	if err != nil {
		return
	}

	if d.Relative {
		prev := lastOfKinds(s.Lists[list], ast.KindContent, ast.KindPcre, ast.KindByteJump)
		if prev == nil {
			err = xerrors.Errorf("pcre %s: relative flag needs a preceding match in %s: %w", args, list, ErrNoAnchor)
			return
		}
		flagRelativeFollower(prev)
	}

	if list == ast.ListHTTPServerBody {
		s.Flags |= ast.FlagResponseBodyInspection
	}

	s.Append(list, d)
	return
}
