package keywords

import (
	"nidscore/detect/ast"
)

// anchorScope lists, per match list, the keyword kinds that can serve as an anchor for a relative keyword.
type anchorScope map[ast.ListID][]ast.Kind

var httpContentLists = []ast.ListID{
	ast.ListPayload, ast.ListURI, ast.ListHTTPClientBody, ast.ListHTTPServerBody,
	ast.ListHTTPHeader, ast.ListHTTPRawHeader, ast.ListHTTPMethod, ast.ListHTTPCookie,
	ast.ListHTTPRawURI, ast.ListHTTPStatMsg, ast.ListHTTPStatCode, ast.ListHTTPUserAgent,
	ast.ListHTTPHost, ast.ListHTTPRawHost,
}

// Anchors for a relative isdataat in a plain signature.
var genericAnchorScope = func() anchorScope {
	sc := anchorScope{}
	for _, l := range httpContentLists {
		sc[l] = append(sc[l], ast.KindContent)
		if l != ast.ListHTTPStatMsg && l != ast.ListHTTPStatCode {
			sc[l] = append(sc[l], ast.KindPcre)
		}
	}

	sc[ast.ListPayload] = append(sc[ast.ListPayload], ast.KindByteJump)

	for _, l := range []ast.ListID{ast.ListPayload, ast.ListDCEStub, ast.ListURI} {
		sc[l] = append(sc[l], ast.KindByteExtract, ast.KindByteTest)
	}

	return sc
}()

// Anchors for a relative isdataat in a DCERPC signature.
var dceAnchorScope = anchorScope{
	ast.ListPayload: {ast.KindContent, ast.KindPcre, ast.KindByteJump},
	ast.ListDCEStub: {ast.KindContent, ast.KindPcre, ast.KindByteJump},
}

// Anchors for a relative isdataat under file_data.
var fileDataAnchorScope = anchorScope{
	ast.ListHTTPServerBody: {ast.KindContent, ast.KindPcre, ast.KindByteJump, ast.KindByteExtract, ast.KindByteTest},
}

// last finds the most recently compiled node in the scope. Ties between lists go to the higher sequence number.
func (sc anchorScope) last(s *ast.Signature) (anchor *ast.MatchNode) {
	for list, kinds := range sc {
		n := lastOfKinds(s.Lists[list], kinds...)
		if n != nil && (anchor == nil || n.Seq > anchor.Seq) {
			anchor = n
		}
	}
	return
}

// lastOfKinds returns the last node in nodes whose descriptor is one of kinds.
func lastOfKinds(nodes []*ast.MatchNode, kinds ...ast.Kind) *ast.MatchNode {
	for i := len(nodes) - 1; i >= 0; i-- {
		k := nodes[i].Desc.Kind()
		for _, want := range kinds {
			if k == want {
				return nodes[i]
			}
		}
	}
	return nil
}

// lastOfKindsAnyList is lastOfKinds over every list of the signature.
func lastOfKindsAnyList(s *ast.Signature, kinds ...ast.Kind) (found *ast.MatchNode) {
	for _, l := range s.Lists {
		n := lastOfKinds(l, kinds...)
		if n != nil && (found == nil || n.Seq > found.Seq) {
			found = n
		}
	}
	return
}

// flagRelativeFollower marks an anchor so that its matcher knows a later node depends on where it matched.
// Only content and pcre matchers look at the flag.
func flagRelativeFollower(anchor *ast.MatchNode) {
	switch anchor.Desc.(type) {
	case *ast.Content, *ast.Pcre:
		anchor.HasRelativeFollower = true
	}
}

// resolveByteExtract finds a byte_extract variable by name among the nodes of one list.
func resolveByteExtract(s *ast.Signature, list ast.ListID, name string) (*ast.ByteExtract, bool) {
	for _, n := range s.Lists[list] {
		if be, ok := n.Desc.(*ast.ByteExtract); ok && be.Name == name {
			return be, true
		}
	}
	return nil, false
}
