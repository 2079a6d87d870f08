// Package keywords compiles rule keywords into signature match lists.
package keywords

import (
	"strconv"
	"strings"

	"nidscore/detect/ast"
	"nidscore/spm"
	"nidscore/varname"

	"github.com/pkg/errors"
	"golang.org/x/xerrors"
)

// Compiler builds signatures out of rule bodies. Compilation is single threaded; the resulting signatures are read only.
type Compiler interface {
	// Compile builds a signature from a rule body such as `content:"Hi"; isdataat:5,relative; sid:1;`.
	Compile(body string) (*ast.Signature, error)
	// Setup compiles one keyword into s.
	Setup(s *ast.Signature, keyword string, args string) error
}

type setupFunc func(c *compilerImpl, s *ast.Signature, args string) error

var setupFuncs = map[string]setupFunc{
	"content":      setupContent,
	"nocase":       setupNocase,
	"offset":       setupOffset,
	"depth":        setupDepth,
	"distance":     setupDistance,
	"within":       setupWithin,
	"pcre":         setupPcre,
	"byte_jump":    setupByteJump,
	"byte_test":    setupByteTest,
	"byte_extract": setupByteExtract,
	"isdataat":     setupIsDataAt,
	"flowvar":      setupFlowvar,
	"flowvar_set":  setupFlowvarSet,

	"pkt_data":      setupPktData,
	"file_data":     setupFileData,
	"dce_stub_data": setupDceStubData,
	"dce_iface":     setupDceIface,

	"http_uri":         setupHTTPModifier(ast.ListURI),
	"http_raw_uri":     setupHTTPModifier(ast.ListHTTPRawURI),
	"http_header":      setupHTTPModifier(ast.ListHTTPHeader),
	"http_raw_header":  setupHTTPModifier(ast.ListHTTPRawHeader),
	"http_client_body": setupHTTPModifier(ast.ListHTTPClientBody),
	"http_server_body": setupHTTPModifier(ast.ListHTTPServerBody),
	"http_method":      setupHTTPModifier(ast.ListHTTPMethod),
	"http_cookie":      setupHTTPModifier(ast.ListHTTPCookie),
	"http_user_agent":  setupHTTPModifier(ast.ListHTTPUserAgent),
	"http_host":        setupHTTPModifier(ast.ListHTTPHost),
	"http_raw_host":    setupHTTPModifier(ast.ListHTTPRawHost),
	"http_stat_msg":    setupHTTPModifier(ast.ListHTTPStatMsg),
	"http_stat_code":   setupHTTPModifier(ast.ListHTTPStatCode),
}

// Keywords that only carry metadata for humans.
var ignoredKeywords = map[string]bool{
	"classtype":    true,
	"reference":    true,
	"metadata":     true,
	"priority":     true,
	"fast_pattern": true,
	"rawbytes":     true,
}

type compilerImpl struct {
	backend spm.Backend
	vars    varname.Store
}

// NewCompiler creates a Compiler. Patterns are compiled with backend and variable names interned in vars.
func NewCompiler(backend spm.Backend, vars varname.Store) Compiler {
	return &compilerImpl{backend: backend, vars: vars}
}

func (c *compilerImpl) Compile(body string) (s *ast.Signature, err error) {
	opts, err := SplitOptions(body)
	if err != nil {
		return
	}

	sig := ast.NewSignature()
	for _, o := range opts {
		switch o.Keyword {
		case "sid":
			sig.ID, err = parseUint32("sid", o.Args)
		case "rev":
			sig.Rev, err = parseUint32("rev", o.Args)
		case "msg":
			sig.Msg, _ = unquote(o.Args)
		default:
			err = c.Setup(sig, o.Keyword, o.Args)
		}

		if err != nil {
			err = errors.Wrapf(err, "keyword %s", o.Keyword)
			return
		}
	}

	if sig.NodeCount() == 0 {
		err = xerrors.Errorf("rule has no match keywords: %w", ErrSyntax)
		return
	}

	s = sig
	return
}

func (c *compilerImpl) Setup(s *ast.Signature, keyword string, args string) error {
	keyword = strings.ToLower(keyword)
	if ignoredKeywords[keyword] {
		return nil
	}

	f, ok := setupFuncs[keyword]
	if !ok {
		return xerrors.Errorf("%q: %w", keyword, ErrUnknownKeyword)
	}

	return f(c, s, args)
}

func parseUint32(name, s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, xerrors.Errorf("%s %q: %w", name, s, ErrOutOfRange)
	}
	return uint32(v), nil
}
