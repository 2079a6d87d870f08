package keywords

import (
	"golang.org/x/xerrors"
)

// Compile errors that callers may want to tell apart.
var (
	ErrUnknownKeyword = xerrors.New("keywords: unknown keyword")
	ErrNoAnchor       = xerrors.New("keywords: relative keyword without a preceding match to be relative to")
	ErrUnresolvedVar  = xerrors.New("keywords: unknown byte_extract variable")
	ErrOutOfRange     = xerrors.New("keywords: value out of range")
	ErrEmptyContent   = xerrors.New("keywords: empty content")
	ErrSyntax         = xerrors.New("keywords: invalid syntax")
)
