// Package telemetry provides Prometheus metrics, run correlation ids and tracing helpers.
//
// A run is a short batch job with no scrape endpoint, so metrics live in a dedicated
// registry that is pushed to a Pushgateway at the end of the run when one is configured.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName labels pushed metrics.
const JobName = "livecheck"

var (
	once sync.Once

	// Registry holds every metric of this process.
	Registry = prometheus.NewRegistry()

	// Counters
	PagesFetched    prometheus.Counter
	MessagesScanned prometheus.Counter
	WebhookSent     prometheus.Counter
	WebhookFailed   prometheus.Counter
	RunsByOutcome   *prometheus.CounterVec

	// Histograms (seconds)
	PageFetchDuration prometheus.Observer
	RunDuration       prometheus.Observer

	// Gauges
	DaysSinceLive    prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		f := promauto.With(Registry)
		PagesFetched = f.NewCounter(prometheus.CounterOpts{Name: "livecheck_pages_fetched_total", Help: "Channel history pages requested"})
		MessagesScanned = f.NewCounter(prometheus.CounterOpts{Name: "livecheck_messages_scanned_total", Help: "Messages run through the live classifier"})
		WebhookSent = f.NewCounter(prometheus.CounterOpts{Name: "livecheck_webhook_sent_total", Help: "Status reports delivered"})
		WebhookFailed = f.NewCounter(prometheus.CounterOpts{Name: "livecheck_webhook_failed_total", Help: "Status report deliveries that failed"})
		RunsByOutcome = f.NewCounterVec(prometheus.CounterOpts{Name: "livecheck_runs_total", Help: "Runs by outcome"}, []string{"outcome"})
		PageFetchDuration = f.NewHistogram(prometheus.HistogramOpts{Name: "livecheck_page_fetch_duration_seconds", Help: "History page fetch duration seconds", Buckets: prometheus.DefBuckets})
		RunDuration = f.NewHistogram(prometheus.HistogramOpts{Name: "livecheck_run_duration_seconds", Help: "Whole run duration seconds", Buckets: prometheus.DefBuckets})
		DaysSinceLive = f.NewGauge(prometheus.GaugeOpts{Name: "livecheck_days_since_live", Help: "Taiwan-local days since the last live notification, -1 when none was found"})
		LastRunTimestamp = f.NewGauge(prometheus.GaugeOpts{Name: "livecheck_last_run_timestamp_seconds", Help: "Unix time the last run finished"})
	})
}

// SetDaysSinceLive records the day count; pass -1 when no live message was found.
func SetDaysSinceLive(n int) {
	if DaysSinceLive != nil {
		DaysSinceLive.Set(float64(n))
	}
}

// IncCounter increments c if it has been initialized.
func IncCounter(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// RecordOutcome counts a finished run and stamps its completion time.
func RecordOutcome(outcome string) {
	if RunsByOutcome != nil {
		RunsByOutcome.WithLabelValues(outcome).Inc()
	}
	if LastRunTimestamp != nil {
		LastRunTimestamp.SetToCurrentTime()
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Push sends the registry to a Pushgateway. An empty url is a no-op.
func Push(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, JobName).Gatherer(Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	slog.Debug("metrics pushed", slog.String("url", url))
	return nil
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// NewRunContext tags ctx with a fresh random run id.
func NewRunContext(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return WithCorrelation(ctx, id), id
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
