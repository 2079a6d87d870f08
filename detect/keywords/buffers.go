package keywords

import (
	"regexp"

	"nidscore/detect/ast"

	"golang.org/x/xerrors"
)

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func noArgs(keyword, args string) error {
	if args != "" {
		return xerrors.Errorf("%s takes no arguments: %w", keyword, ErrSyntax)
	}
	return nil
}

func setupPktData(c *compilerImpl, s *ast.Signature, args string) error {
	if err := noArgs("pkt_data", args); err != nil {
		return err
	}

	s.Init.Buffer = ast.ListPayload
	s.Init.FileData = false
	return nil
}

func setupFileData(c *compilerImpl, s *ast.Signature, args string) error {
	if err := noArgs("file_data", args); err != nil {
		return err
	}

	s.Init.Buffer = ast.ListHTTPServerBody
	s.Init.FileData = true
	s.Flags |= ast.FlagAppLayer | ast.FlagResponseBodyInspection
	return nil
}

func setupDceStubData(c *compilerImpl, s *ast.Signature, args string) error {
	if err := noArgs("dce_stub_data", args); err != nil {
		return err
	}

	s.Init.Buffer = ast.ListDCEStub
	s.Init.FileData = false
	s.Init.DCE = true
	s.Flags |= ast.FlagAppLayer | ast.FlagDCERPC
	return nil
}

func setupDceIface(c *compilerImpl, s *ast.Signature, args string) error {
	if !uuidRegex.MatchString(args) {
		return xerrors.Errorf("dce_iface %q is not a uuid: %w", args, ErrSyntax)
	}

	s.DCEIface = args
	s.Init.DCE = true
	s.Flags |= ast.FlagAppLayer | ast.FlagDCERPC
	return nil
}
