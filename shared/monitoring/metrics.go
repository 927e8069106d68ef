package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "video_insights_run_duration_seconds",
		Help:    "Duration of scheduled refresh runs by outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	sourceRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_insights_source_refresh_total",
		Help: "Source refresh attempts by source and result.",
	}, []string{"source", "result"})

	sourceRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "video_insights_source_records",
		Help: "Records currently published for each source.",
	}, []string{"source"})

	sourceLastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "video_insights_source_last_success_timestamp_seconds",
		Help: "Unix time of the last successful refresh per source.",
	}, []string{"source"})

	staleResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_insights_source_stale_results_total",
		Help: "Fetch results discarded because a newer refresh was already published.",
	}, []string{"source"})

	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_insights_api_requests_total",
		Help: "API requests by route pattern and status code.",
	}, []string{"route", "code"})
)

// RecordRefresh records a completed fetch for source. On failure the published count drops to zero.
func RecordRefresh(source string, records int, err error) {
	if err != nil {
		sourceRefreshes.WithLabelValues(source, "error").Inc()
		sourceRecords.WithLabelValues(source).Set(0)
		return
	}
	sourceRefreshes.WithLabelValues(source, "success").Inc()
	sourceRecords.WithLabelValues(source).Set(float64(records))
	sourceLastSuccess.WithLabelValues(source).Set(float64(time.Now().Unix()))
}

func RecordStale(source string) {
	staleResults.WithLabelValues(source).Inc()
}

func RecordRequest(route string, code string) {
	apiRequests.WithLabelValues(route, code).Inc()
}
