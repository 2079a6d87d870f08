package logging

import (
	"encoding/json"
	"path/filepath"
	"sync"

	"nidscore/detect"

	"github.com/rs/zerolog"
)

// FileName is the alert log file name inside the alert log directory.
const FileName = "alerts.json"

type filelogAlertLogger struct {
	file         AlertFile
	logger       zerolog.Logger
	writelogline chan []byte
	writeDone    chan struct{}
	closeOnce    sync.Once
	mu           sync.RWMutex
	closed       bool
}

// NewFileAlertLogger creates an alert logger that appends one JSON line per alert to dir/FileName.
// Lines are written by a single goroutine, so concurrent workers never interleave.
func NewFileAlertLogger(fileSystem AlertFileSystem, dir string, logger zerolog.Logger) (AlertLogger, error) {
	r := &filelogAlertLogger{logger: logger}

	err := fileSystem.MkDir(dir)
	if err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create the alert log directory")
		return nil, err
	}

	name := filepath.Join(dir, FileName)
	r.file, err = fileSystem.Open(name)
	if err != nil {
		logger.Error().Err(err).Str("file", name).Msg("Failed to open the alert log")
		return nil, err
	}

	r.writelogline = make(chan []byte, 64)
	r.writeDone = make(chan struct{})
	go func() {
		defer close(r.writeDone)
		for v := range r.writelogline {
			if err := r.file.Append(append(v, '\n')); err != nil {
				r.logger.Error().Err(err).Msg("Error while writing alert log")
			}
		}
	}()

	return r, nil
}

func (l *filelogAlertLogger) AlertTriggered(a detect.Alert) {
	bb, err := json.Marshal(newAlertLogEntry(a))
	if err != nil {
		l.logger.Error().Err(err).Msg("Error while marshaling JSON alert log")
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	l.writelogline <- bb
}

// Close flushes pending lines and closes the file.
func (l *filelogAlertLogger) Close() (err error) {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.writelogline)
		l.mu.Unlock()

		<-l.writeDone
		err = l.file.Close()
	})
	return
}
