package logging

import (
	"nidscore/detect"

	"github.com/rs/zerolog"
)

// AlertLogger receives the alerts raised by the engine. Implementations must be safe for concurrent use.
type AlertLogger interface {
	AlertTriggered(a detect.Alert)
	Close() error
}

// NewZerologAlertLogger creates an alert logger that writes alerts as log messages.
func NewZerologAlertLogger(logger zerolog.Logger) AlertLogger {
	return &zerologAlertLogger{logger: logger}
}

type zerologAlertLogger struct {
	logger zerolog.Logger
}

func (l *zerologAlertLogger) AlertTriggered(a detect.Alert) {
	l.logger.Warn().
		Uint32("sid", a.SID).
		Uint32("rev", a.Rev).
		Str("flow", a.Flow.String()).
		Msg(a.Msg)
}

func (l *zerologAlertLogger) Close() error { return nil }
