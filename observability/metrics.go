// Package observability exposes engine metrics to prometheus.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"nidscore/detect"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the engine counters. A nil *Metrics ignores every observation.
type Metrics struct {
	packetsTotal        prometheus.Counter
	alertsTotal         *prometheus.CounterVec
	evalResultsTotal    *prometheus.CounterVec
	commitsTotal        prometheus.Counter
	compileFailures     *prometheus.CounterVec
	signaturesLoaded    prometheus.Gauge
	candidatesPerPacket prometheus.Histogram
	packetDuration      prometheus.Histogram
}

// NewMetrics creates the metrics and registers them with reg, or the default registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		packetsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "nids_packets_total", Help: "Total packets inspected"},
		),
		alertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "nids_alerts_total", Help: "Total alerts raised"},
			[]string{"sid"},
		),
		evalResultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "nids_signature_evaluations_total", Help: "Signature evaluations by result"},
			[]string{"result"},
		),
		commitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "nids_flowvar_commits_total", Help: "Flow variables committed"},
		),
		compileFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "nids_signature_compile_failures_total", Help: "Signatures rejected at load"},
			[]string{"file"},
		),
		signaturesLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "nids_signatures_loaded", Help: "Signatures currently loaded"},
		),
		candidatesPerPacket: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nids_prefilter_candidates",
				Help:    "Signatures evaluated per packet after the prefilter",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		packetDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nids_packet_duration_seconds",
				Help:    "Time spent inspecting one packet",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.packetsTotal,
		m.alertsTotal,
		m.evalResultsTotal,
		m.commitsTotal,
		m.compileFailures,
		m.signaturesLoaded,
		m.candidatesPerPacket,
		m.packetDuration,
	)

	return m
}

// Handler serves reg, or the default gatherer when reg is nil.
func (m *Metrics) Handler(reg *prometheus.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObservePacket records one inspected packet.
func (m *Metrics) ObservePacket(candidates int, commits int, d time.Duration) {
	if m == nil {
		return
	}

	m.packetsTotal.Inc()
	m.candidatesPerPacket.Observe(float64(candidates))
	m.packetDuration.Observe(d.Seconds())
	if commits > 0 {
		m.commitsTotal.Add(float64(commits))
	}
}

// ObserveResult records the outcome of one signature evaluation.
func (m *Metrics) ObserveResult(r detect.Result) {
	if m == nil {
		return
	}
	m.evalResultsTotal.WithLabelValues(r.String()).Inc()
}

// ObserveAlert records an alert.
func (m *Metrics) ObserveAlert(sid uint32) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(strconv.FormatUint(uint64(sid), 10)).Inc()
}

// ObserveLoad records the outcome of loading signatures from one file.
func (m *Metrics) ObserveLoad(file string, loaded, failed int) {
	if m == nil {
		return
	}
	m.signaturesLoaded.Add(float64(loaded))
	if failed > 0 {
		m.compileFailures.WithLabelValues(file).Add(float64(failed))
	}
}

// ResetSignatures sets the loaded signature gauge back to zero before a reload.
func (m *Metrics) ResetSignatures() {
	if m == nil {
		return
	}
	m.signaturesLoaded.Set(0)
}
