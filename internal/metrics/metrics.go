// Package metrics records crawl counters with Prometheus.
//
// Each run gets its own registry so repeated runs in one process start from
// zero. Results can be written in the text exposition format for the node
// exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/pfrederiksen/eventscrape/internal/scraper"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eventscrape"

// Run holds the metrics for one crawl. It implements scraper.Observer.
type Run struct {
	registry     *prometheus.Registry
	pagesTotal   prometheus.Counter
	cardsTotal   *prometheus.CounterVec
	pageDuration prometheus.Summary
	lastRecords  prometheus.Gauge
	lastSuccess  prometheus.Gauge
}

// NewRun creates and registers a fresh set of crawl metrics
func NewRun() *Run {
	r := &Run{registry: prometheus.NewRegistry()}

	r.pagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pages_total",
		Help:      "Listing pages fully processed.",
	})
	r.cardsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cards_total",
		Help:      "Event cards seen, by outcome.",
	}, []string{"outcome"})
	r.pageDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace:  namespace,
		Name:       "page_duration_seconds",
		Help:       "Time to navigate and drain one listing page.",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	})
	r.lastRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_records",
		Help:      "Records exported by the last run.",
	})
	r.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last run that exported successfully.",
	})

	r.registry.MustRegister(r.pagesTotal, r.cardsTotal, r.pageDuration, r.lastRecords, r.lastSuccess)

	// Pre-create outcome series so they export as 0
	for _, o := range []scraper.Outcome{scraper.OutcomeAccepted, scraper.OutcomeDuplicate, scraper.OutcomeFailed} {
		r.cardsTotal.WithLabelValues(string(o))
	}

	return r
}

// ObservePage records one drained page
func (r *Run) ObservePage(_ int, _ int, elapsed time.Duration) {
	r.pagesTotal.Inc()
	r.pageDuration.Observe(elapsed.Seconds())
}

// ObserveCard records one card outcome
func (r *Run) ObserveCard(outcome scraper.Outcome) {
	r.cardsTotal.WithLabelValues(string(outcome)).Inc()
}

// Finish records the exported record count and, on success, the completion time
func (r *Run) Finish(records int, success bool) {
	r.lastRecords.Set(float64(records))
	if success {
		r.lastSuccess.SetToCurrentTime()
	}
}

// Registry returns the run's registry
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
