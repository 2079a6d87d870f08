// Package prefilter picks the signatures worth evaluating for a packet using one Aho-Corasick pass per buffer.
package prefilter

import (
	"nidscore/detect"
	"nidscore/detect/ast"

	"github.com/cloudflare/ahocorasick"
)

// listMatcher finds the fast patterns of one buffer list.
type listMatcher struct {
	list    ast.ListID
	matcher *ahocorasick.Matcher
	// owners[i] are the positions of the signatures whose fast pattern is patterns[i].
	owners [][]int
}

// Prefilter is built once from the loaded signatures and is safe for concurrent use.
type Prefilter struct {
	sigs     []*ast.Signature
	lists    []listMatcher
	always   []int
	patterns int
}

// New creates a Prefilter. Signatures without a usable fast pattern are always candidates.
func New(sigs []*ast.Signature) *Prefilter {
	pf := &Prefilter{sigs: sigs}

	type pending struct {
		patterns [][]byte
		index    map[string]int
		owners   [][]int
	}
	var byList [ast.ListCount]*pending

	for pos, s := range sigs {
		list, pattern := FastPattern(s)
		if pattern == nil {
			pf.always = append(pf.always, pos)
			continue
		}

		p := byList[list]
		if p == nil {
			p = &pending{index: make(map[string]int)}
			byList[list] = p
		}

		i, ok := p.index[string(pattern)]
		if !ok {
			i = len(p.patterns)
			p.index[string(pattern)] = i
			p.patterns = append(p.patterns, pattern)
			p.owners = append(p.owners, nil)
		}
		p.owners[i] = append(p.owners[i], pos)
	}

	for list, p := range byList {
		if p == nil {
			continue
		}
		pf.lists = append(pf.lists, listMatcher{
			list:    ast.ListID(list),
			matcher: ahocorasick.NewMatcher(p.patterns),
			owners:  p.owners,
		})
		pf.patterns += len(p.patterns)
	}

	return pf
}

// FastPattern returns the longest case-sensitive, non-negated content of s and the list it belongs to, or nil.
func FastPattern(s *ast.Signature) (list ast.ListID, pattern []byte) {
	for l := ast.ListID(0); l < ast.ListCount; l++ {
		if !l.IsBuffer() {
			continue
		}

		for _, n := range s.Lists[l] {
			c, ok := n.Desc.(*ast.Content)
			if !ok || c.Negated || c.Nocase {
				continue
			}
			if len(c.Pattern) > len(pattern) {
				list, pattern = l, c.Pattern
			}
		}
	}
	return
}

// Candidates returns the signatures that may match the packet, in load order.
func (pf *Prefilter) Candidates(buffers detect.BufferProvider) []*ast.Signature {
	hit := make([]bool, len(pf.sigs))
	for _, pos := range pf.always {
		hit[pos] = true
	}

	for _, lm := range pf.lists {
		buf, ok := buffers.Buffer(lm.list)
		if !ok || len(buf) == 0 {
			continue
		}

		for _, i := range lm.matcher.MatchThreadSafe(buf) {
			for _, pos := range lm.owners[i] {
				hit[pos] = true
			}
		}
	}

	result := make([]*ast.Signature, 0, len(pf.always))
	for pos, ok := range hit {
		if ok {
			result = append(result, pf.sigs[pos])
		}
	}
	return result
}

// Patterns is the number of distinct fast patterns.
func (pf *Prefilter) Patterns() int { return pf.patterns }

// AlwaysCount is the number of signatures evaluated on every packet.
func (pf *Prefilter) AlwaysCount() int { return len(pf.always) }
