// Package testutils holds helpers shared by tests.
package testutils

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// NewTestLogger creates a zerolog.Logger that writes to the test's log, so output only shows for failed or verbose runs.
func NewTestLogger(t testing.TB) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: testWriter{t}, NoColor: true, TimeFormat: "15:04:05.000"}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

type testWriter struct {
	t testing.TB
}

func (tw testWriter) Write(p []byte) (n int, err error) {
	tw.t.Helper()
	tw.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
