// Package metric collects run counters and dumps them in the Prometheus
// text exposition format for the node_exporter textfile collector.
package metric // import "github.com/jemtv/storyfeed/internal/metric"

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus Metrics.
var (
	PagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storyfeed",
		Name:      "archive_pages_fetched_total",
		Help:      "Archive listing pages fetched during the run",
	})

	StoriesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storyfeed",
		Name:      "archive_stories_fetched_total",
		Help:      "Stories fetched from the archive during the run",
	})

	FetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storyfeed",
		Name:      "archive_fetch_errors_total",
		Help:      "Archive page requests that failed",
	})

	FeedItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storyfeed",
		Name:      "feed_items",
		Help:      "Items written to the generated feed",
	})

	FeedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storyfeed",
		Name:      "feed_bytes",
		Help:      "Size of the generated feed document",
	})

	BuildDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storyfeed",
		Name:      "build_duration_seconds",
		Help:      "Wall clock time of the whole generate run",
	})
)

var registry = prometheus.NewPedanticRegistry()

func init() {
	registry.MustRegister(PagesFetched, StoriesFetched, FetchErrors,
		FeedItems, FeedBytes, BuildDuration)
}

// WriteTextfile dumps all run metrics to fname, replacing the previous
// dump atomically.
func WriteTextfile(fname string) error {
	if err := prometheus.WriteToTextfile(fname, registry); err != nil {
		return fmt.Errorf("metric: write textfile %q: %w", fname, err)
	}
	return nil
}
