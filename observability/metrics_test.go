package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nidscore/detect"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserve(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Act
	m.ObservePacket(3, 2, time.Millisecond)
	m.ObservePacket(1, 0, time.Millisecond)
	m.ObserveResult(detect.Match)
	m.ObserveResult(detect.Error)
	m.ObserveAlert(1000)
	m.ObserveLoad("rules.yaml", 10, 2)

	// Assert
	assert.Equal(t, 2.0, testutil.ToFloat64(m.packetsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.commitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.alertsTotal.WithLabelValues("1000")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evalResultsTotal.WithLabelValues("error")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.signaturesLoaded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.compileFailures.WithLabelValues("rules.yaml")))

	m.ResetSignatures()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.signaturesLoaded))

	_, err := reg.Gather()
	require.NoError(t, err)
}

func TestNilMetricsIgnoresObservations(t *testing.T) {
	var m *Metrics
	m.ObservePacket(1, 1, time.Second)
	m.ObserveResult(detect.Match)
	m.ObserveAlert(1)
	m.ObserveLoad("x", 1, 1)
	m.ResetSignatures()
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveAlert(7)

	rec := httptest.NewRecorder()
	m.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `nids_alerts_total{sid="7"} 1`))
}
