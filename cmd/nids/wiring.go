package main

import (
	"os"

	"nidscore/config"
	"nidscore/detect/engine"
	"nidscore/detect/evaluation"
	"nidscore/detect/keywords"
	"nidscore/flow"
	"nidscore/logging"
	"nidscore/observability"
	"nidscore/spm"
	"nidscore/varname"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// app is everything a command needs, built from the configuration.
type app struct {
	cfg      *config.Main
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	engine   engine.Engine
	stats    engine.LoadStats
}

// newApp is the dependency injection composition root.
func newApp(cfg *config.Main) (a *app, err error) {
	a = &app{cfg: cfg}

	a.logger, err = logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return
	}

	a.registry = prometheus.NewRegistry()
	a.metrics = observability.NewMetrics(a.registry)

	backend, err := spm.New(cfg.PatternSearch)
	if err != nil {
		err = errors.Wrap(err, "pattern search backend")
		return
	}

	vars := varname.NewStore()
	compiler := keywords.NewCompiler(backend, vars)
	loader := engine.NewSignatureLoader(a.logger, compiler, &engine.LoaderFileSystemImpl{}, a.metrics)
	ev := evaluation.NewEvaluator(a.logger, cfg.InspectionRecursionLimit)
	ef := engine.NewEngineFactory(a.logger, loader, ev, a.metrics)

	a.engine, a.stats, err = ef.NewEngine(cfg.SignaturePaths())
	if err != nil {
		return
	}

	a.logger.Info().Int("variables", vars.Len()).Str("patternSearch", backend.Name()).Msg("Signatures compiled")
	return
}

// newPool builds the worker pool and the alert output. The returned AlertLogger must be closed after the pool stops.
func (a *app) newPool() (*engine.Pool, logging.AlertLogger, error) {
	flows, err := flow.NewTable(a.cfg.FlowTableSize, func(f *flow.Flow) {
		a.logger.Debug().Str("flow", f.Key.String()).Msg("Flow evicted")
	})
	if err != nil {
		return nil, nil, err
	}

	alerts := logging.NewZerologAlertLogger(a.logger)
	if a.cfg.AlertLog != "" {
		alerts, err = logging.NewFileAlertLogger(logging.OSAlertFileSystem{}, a.cfg.AlertLog, a.logger)
		if err != nil {
			return nil, nil, err
		}
	}

	return engine.NewPool(a.logger, a.engine, flows, alerts, a.cfg.Workers, a.cfg.QueueDepth), alerts, nil
}
