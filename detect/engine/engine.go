// Package engine loads signatures and inspects packets against them.
package engine

import (
	"strings"
	"time"

	"nidscore/detect"
	"nidscore/detect/ast"
	"nidscore/detect/evaluation"
	"nidscore/observability"
	"nidscore/prefilter"

	"github.com/rs/zerolog"
)

// Engine inspects packets against a fixed set of signatures. It is safe for concurrent use as long as every
// goroutine brings its own ThreadCtx.
type Engine interface {
	// Inspect evaluates the signatures that may match pkt and returns the alerts raised.
	// The pending captures of tctx are dropped before Inspect returns, whatever the outcome.
	Inspect(tctx *evaluation.ThreadCtx, pkt *detect.Packet) []detect.Alert

	// Signatures is the number of loaded signatures.
	Signatures() int
}

type engineImpl struct {
	logger    zerolog.Logger
	sigs      []*ast.Signature
	prefilter *prefilter.Prefilter
	evaluator evaluation.Evaluator
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewEngine creates an Engine over sigs. metrics may be nil.
func NewEngine(logger zerolog.Logger, sigs []*ast.Signature, ev evaluation.Evaluator, metrics *observability.Metrics) Engine {
	pf := prefilter.New(sigs)
	logger.Info().Int("signatures", len(sigs)).Int("fastPatterns", pf.Patterns()).Int("alwaysEvaluated", pf.AlwaysCount()).Msg("Engine ready")

	return &engineImpl{
		logger:    logger,
		sigs:      sigs,
		prefilter: pf,
		evaluator: ev,
		metrics:   metrics,
		now:       time.Now,
	}
}

func (e *engineImpl) Signatures() int { return len(e.sigs) }

func (e *engineImpl) Inspect(tctx *evaluation.ThreadCtx, pkt *detect.Packet) (alerts []detect.Alert) {
	startTime := e.now()
	candidates := e.prefilter.Candidates(pkt)

	defer func() {
		e.metrics.ObservePacket(len(candidates), tctx.Commits, e.now().Sub(startTime))
		tctx.EndPacket()
	}()

	for _, s := range candidates {
		if !dceApplies(s, pkt) {
			continue
		}

		r := e.evaluator.EvalSignature(tctx, s, pkt, pkt.Flow)
		e.metrics.ObserveResult(r)
		if r != detect.Match {
			continue
		}

		e.metrics.ObserveAlert(s.ID)
		alerts = append(alerts, detect.Alert{
			Time: startTime,
			SID:  s.ID,
			Rev:  s.Rev,
			Msg:  s.Msg,
			Flow: pkt.FlowKey,
		})
	}

	if len(alerts) > 0 {
		e.logger.Debug().Str("flow", pkt.FlowKey.String()).Int("alerts", len(alerts)).Msg("Packet raised alerts")
	}

	return
}

// dceApplies checks the DCERPC restrictions of s.
func dceApplies(s *ast.Signature, pkt *detect.Packet) bool {
	if !s.Has(ast.FlagDCERPC) {
		return true
	}
	if !pkt.IsDCE {
		return false
	}
	return s.DCEIface == "" || strings.EqualFold(s.DCEIface, pkt.DCEIface)
}
