package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	compileDuration prom.Histogram
	compileOutcome  *prom.CounterVec
	watchedFiles    prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.compileDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "stylebuild",
			Name:      "compile_duration_seconds",
			Help:      "Total compile pass duration",
			Buckets:   prom.DefBuckets,
		})
		pr.compileOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "stylebuild",
			Name:      "compile_outcomes_total",
			Help:      "Compile outcomes by result and trigger",
		}, []string{"outcome", "trigger"})
		pr.watchedFiles = prom.NewGauge(prom.GaugeOpts{
			Namespace: "stylebuild",
			Name:      "watched_files",
			Help:      "Number of input files under observation",
		})
		reg.MustRegister(pr.compileDuration, pr.compileOutcome, pr.watchedFiles)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveCompileDuration(d time.Duration) {
	if p == nil || p.compileDuration == nil {
		return
	}
	p.compileDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCompileOutcome(outcome OutcomeLabel, trigger TriggerLabel) {
	if p == nil || p.compileOutcome == nil {
		return
	}
	p.compileOutcome.WithLabelValues(string(outcome), string(trigger)).Inc()
}

func (p *PrometheusRecorder) SetWatchedFiles(n int) {
	if p == nil || p.watchedFiles == nil {
		return
	}
	p.watchedFiles.Set(float64(n))
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
