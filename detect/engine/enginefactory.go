package engine

import (
	"nidscore/detect/evaluation"
	"nidscore/observability"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// EngineFactory builds engines from signature files.
type EngineFactory interface {
	NewEngine(paths []string) (Engine, LoadStats, error)
}

// NewEngineFactory creates a factory that can create engines.
func NewEngineFactory(logger zerolog.Logger, loader SignatureLoader, ev evaluation.Evaluator, metrics *observability.Metrics) EngineFactory {
	return &engineFactoryImpl{
		logger:    logger,
		loader:    loader,
		evaluator: ev,
		metrics:   metrics,
	}
}

type engineFactoryImpl struct {
	logger    zerolog.Logger
	loader    SignatureLoader
	evaluator evaluation.Evaluator
	metrics   *observability.Metrics
}

func (f *engineFactoryImpl) NewEngine(paths []string) (engine Engine, stats LoadStats, err error) {
	f.logger.Info().Strs("files", paths).Msg("Loading signatures")

	f.metrics.ResetSignatures()
	sigs, stats, err := f.loader.Load(paths)
	if err != nil {
		err = errors.Wrap(err, "failed to load signatures")
		return
	}

	engine = NewEngine(f.logger, sigs, f.evaluator, f.metrics)
	return
}
