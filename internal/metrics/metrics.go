// Package metrics exposes pipeline counters as Prometheus metrics:
// counters and histograms registered once at construction and
// incremented from stage code. The "service" being instrumented is a
// batch pipeline run rather than a long-lived server, so the registry
// is only scraped when --metrics-addr is set.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry groups every metric the pipeline emits. Callers that don't
// want Prometheus wiring can simply never call Serve; the metrics are
// then still incremented in memory but never exposed.
type Registry struct {
	reg *prometheus.Registry

	StagesCompleted  *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	SnapshotsTotal   *prometheus.CounterVec
	PropagationFails *prometheus.CounterVec
	EventsDetected   *prometheus.CounterVec
	HandoversEvaluated prometheus.Counter
}

// New builds a Registry with every metric registered.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		StagesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orbitpipe",
			Name:      "stages_completed_total",
			Help:      "Number of pipeline stages that completed, by stage name and outcome.",
		}, []string{"stage", "outcome"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orbitpipe",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 16),
		}, []string{"stage"}),
		SnapshotsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orbitpipe",
			Name:      "snapshots_total",
			Help:      "Satellite snapshots produced, by outcome (produced/dropped).",
		}, []string{"outcome"}),
		PropagationFails: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orbitpipe",
			Name:      "propagation_failures_total",
			Help:      "SGP4 propagation failures, by status code.",
		}, []string{"status"}),
		EventsDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orbitpipe",
			Name:      "events_detected_total",
			Help:      "3GPP measurement events detected, by event type.",
		}, []string{"event_type"}),
		HandoversEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "orbitpipe",
			Name:      "handovers_evaluated_total",
			Help:      "Handover candidate evaluations performed.",
		}),
	}
}

// Serve starts a debug HTTP listener exposing /metrics until ctx is
// canceled. Intended for the optional --metrics-addr flag.
func (r *Registry) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
