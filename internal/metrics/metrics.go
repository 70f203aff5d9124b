/*
Package metrics records the counters of one update run and writes them in the
Prometheus textfile format for a node exporter collector.
*/
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StageParsed    = "parsed"
	StageRelevant  = "relevant"
	StageDuplicate = "duplicate"
	StageCandidate = "candidate"
)

// Run holds a private registry so concurrent runs and tests never share state.
type Run struct {
	Registry *prometheus.Registry

	FeedFetches      *prometheus.CounterVec
	Entries          *prometheus.CounterVec
	SelectedArticles prometheus.Gauge
	DistinctSources  prometheus.Gauge
	LastRunSuccess   prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

func New() *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Run{
		Registry: reg,
		FeedFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newsgrid_feed_fetch_total",
			Help: "Feed fetches by result (ok, empty)",
		}, []string{"result"}),
		Entries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newsgrid_entries_total",
			Help: "Entries seen at each pipeline stage",
		}, []string{"stage"}),
		SelectedArticles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "newsgrid_selected_articles",
			Help: "Articles written to the news grid",
		}),
		DistinctSources: factory.NewGauge(prometheus.GaugeOpts{
			Name: "newsgrid_distinct_sources",
			Help: "Distinct sources among the selected articles",
		}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "newsgrid_last_run_success",
			Help: "1 if the last run updated the document, 0 otherwise",
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "newsgrid_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

func (r *Run) Fetched(ok bool) {
	result := "empty"
	if ok {
		result = "ok"
	}
	r.FeedFetches.WithLabelValues(result).Inc()
}

func (r *Run) Stage(stage string, n int) {
	r.Entries.WithLabelValues(stage).Add(float64(n))
}

// WriteFile writes every metric of the run to path, replacing it atomically.
func (r *Run) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
