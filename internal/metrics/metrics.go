package metrics

import (
	"fmt"
	"time"

	"netthreat/internal/analysis"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "netthreat"

var severities = []analysis.Severity{
	analysis.SeverityLow,
	analysis.SeverityMedium,
	analysis.SeverityHigh,
	analysis.SeverityCritical,
}

// Recorder collects per-run analysis metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	runs           *prometheus.CounterVec
	packets        prometheus.Counter
	threats        *prometheus.CounterVec
	credentialHits prometheus.Counter
	duration       prometheus.Histogram
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_runs_total",
			Help:      "Number of analysis runs by outcome",
		}, []string{"outcome"}),
		packets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_total",
			Help:      "Number of packets handed to the analyzer",
		}),
		threats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "threats_total",
			Help:      "Number of distinct threats reported, by severity",
		}, []string{"severity"}),
		credentialHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_hits_total",
			Help:      "Number of payloads that looked like credentials",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of successful analysis runs",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	r.registry.MustRegister(r.runs, r.packets, r.threats, r.credentialHits, r.duration)

	// Zero series so every severity is exported even before it is seen.
	for _, s := range severities {
		r.threats.WithLabelValues(s.String())
	}
	return r
}

// Registry exposes the underlying registry, e.g. for promhttp.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveResult records a successful run.
func (r *Recorder) ObserveResult(res *analysis.AnalysisResult, took time.Duration) {
	r.runs.WithLabelValues("ok").Inc()
	r.packets.Add(float64(res.Stats.TotalPackets))
	for _, t := range res.Threats {
		r.threats.WithLabelValues(t.Severity.String()).Inc()
	}
	r.credentialHits.Add(float64(len(res.CredentialHits)))
	r.duration.Observe(took.Seconds())
}

// ObserveFailure records a run that produced no result.
func (r *Recorder) ObserveFailure() {
	r.runs.WithLabelValues("failed").Inc()
}

// WriteTextfile writes the current metrics in the text exposition format,
// suitable for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %v", err)
	}
	return nil
}
