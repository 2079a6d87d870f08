// Package evaluation runs compiled signatures against packet buffers.
package evaluation

import (
	"nidscore/detect"
	"nidscore/detect/ast"
	"nidscore/detect/flowvars"
	"nidscore/flow"

	"github.com/rs/zerolog"
)

// DefaultRecursionLimit bounds anchor retries per list when no limit is configured.
const DefaultRecursionLimit = 3000

// Evaluator decides whether signatures match a packet.
type Evaluator interface {
	// EvalList inspects one list of s against buf. f is only consulted by flow-level nodes and may be nil.
	EvalList(tctx *ThreadCtx, s *ast.Signature, list ast.ListID, buf []byte, f *flow.Flow) detect.Result

	// EvalSignature evaluates every non-empty list of s and, when all of them matched, runs the post-match step.
	EvalSignature(tctx *ThreadCtx, s *ast.Signature, buffers detect.BufferProvider, f *flow.Flow) detect.Result

	// PostMatch commits the captures of s staged in tctx. It does nothing unless allListsTrue. Returns the number of values committed.
	PostMatch(tctx *ThreadCtx, s *ast.Signature, f *flow.Flow, allListsTrue bool) int
}

type evaluatorImpl struct {
	logger         zerolog.Logger
	recursionLimit int
}

// NewEvaluator creates an Evaluator. A recursionLimit of zero or less uses DefaultRecursionLimit.
func NewEvaluator(logger zerolog.Logger, recursionLimit int) Evaluator {
	if recursionLimit <= 0 {
		recursionLimit = DefaultRecursionLimit
	}

	return &evaluatorImpl{
		logger:         logger,
		recursionLimit: recursionLimit,
	}
}

func (e *evaluatorImpl) EvalList(tctx *ThreadCtx, s *ast.Signature, list ast.ListID, buf []byte, f *flow.Flow) detect.Result {
	nodes := s.Lists[list]
	if len(nodes) == 0 {
		return detect.Match
	}

	tctx.retriesLeft = e.recursionLimit
	in := &inspection{tctx: tctx, buf: buf, flow: f}
	r := in.run(nodes, 0)
	if r == detect.Error {
		e.logger.Debug().Uint32("sid", s.ID).Str("list", list.String()).Err(in.err).Msg("Signature evaluation error")
	}

	return r
}

func (e *evaluatorImpl) EvalSignature(tctx *ThreadCtx, s *ast.Signature, buffers detect.BufferProvider, f *flow.Flow) detect.Result {
	tctx.Begin(s)

	for list := ast.ListID(0); list < ast.ListCount; list++ {
		if list == ast.ListPostMatch || len(s.Lists[list]) == 0 {
			continue
		}

		var buf []byte
		if list.IsBuffer() {
			b, ok := buffers.Buffer(list)
			if !ok {
				return detect.NoMatch
			}
			buf = b
		}

		if r := e.EvalList(tctx, s, list, buf, f); r != detect.Match {
			return r
		}
	}

	e.PostMatch(tctx, s, f, true)
	return detect.Match
}

func (e *evaluatorImpl) PostMatch(tctx *ThreadCtx, s *ast.Signature, f *flow.Flow, allListsTrue bool) (committed int) {
	if !allListsTrue {
		return
	}

	for _, n := range s.Lists[ast.ListPostMatch] {
		pm, ok := n.Desc.(*ast.FlowVarPostMatch)
		if !ok {
			continue
		}

		if flowvars.Commit(f, tctx.Pending, pm.VarIndex) {
			committed++
		}
	}

	tctx.Commits += committed
	return
}
