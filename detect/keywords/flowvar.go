package keywords

import (
	"strings"

	"nidscore/detect/ast"
	"nidscore/varname"

	"golang.org/x/xerrors"
)

// parseFlowvarArgs parses `name,content` and decodes the content.
func parseFlowvarArgs(args string) (name string, content []byte, err error) {
	pos := strings.Index(args, ",")
	if pos == -1 {
		err = xerrors.Errorf("%q is not a valid setting for flowvar: %w", args, ErrSyntax)
		return
	}

	name = strings.TrimSpace(args[:pos])
	if name == "" {
		err = xerrors.Errorf("%q has an empty flowvar name: %w", args, ErrSyntax)
		return
	}

	raw, _ := unquote(strings.TrimSpace(args[pos+1:]))
	content, err = decodeContent(raw)
	if err != nil {
		err = xerrors.Errorf("flowvar %s: %w", name, err)
		return
	}

	return
}

// setupFlowvar compiles the read form: match content against the stored flow variable.
func setupFlowvar(c *compilerImpl, s *ast.Signature, args string) (err error) {
	name, content, err := parseFlowvarArgs(args)
	if err != nil {
		return
	}

	d := &ast.FlowVar{
		Name:     name,
		VarIndex: c.vars.Intern(name, varname.FlowVar),
		Content:  content,
	}

	d.Searcher, err = c.backend.Compile(content, false)
	if err != nil {
		return
	}

	s.Append(ast.ListPacket, d)
	return
}

// setupFlowvarSet compiles the write form: match content in the current buffer and, once the whole
// signature matched, store it in the flow variable.
func setupFlowvarSet(c *compilerImpl, s *ast.Signature, args string) (err error) {
	name, content, err := parseFlowvarArgs(args)
	if err != nil {
		return
	}

	idx := c.vars.Intern(name, varname.FlowVar)
	d := &ast.FlowVarCapture{
		Name:     name,
		VarIndex: idx,
		Content:  content,
	}

	d.Searcher, err = c.backend.Compile(content, false)
	if err != nil {
		return
	}

	s.Append(s.Init.Buffer, d)
	s.Append(ast.ListPostMatch, &ast.FlowVarPostMatch{VarIndex: idx})
	return
}
