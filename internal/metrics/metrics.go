// Package metrics exports dispatcher run reports as prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/notifications"
)

const (
	namespace = "milestone"
	jobName   = "milestone_dispatcher"
)

// Metrics holds the dispatcher collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	runs        prometheus.Counter
	subscribers *prometheus.CounterVec
	sends       *prometheus.CounterVec
	batches     prometheus.Counter
	duration    prometheus.Histogram
	lastRun     prometheus.Gauge
}

// New registers the dispatcher collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		runs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed dispatcher runs.",
		}),
		subscribers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscribers_total",
			Help:      "Subscribers evaluated, by outcome.",
		}, []string{"outcome"}),
		sends: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_total",
			Help:      "Recipient sends, by channel and result.",
		}, []string{"channel", "result"}),
		batches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Messaging gateway calls.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Dispatcher run duration.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Run instant of the last completed run.",
		}),
	}
}

// Record adds a finished report to the collectors.
func (m *Metrics) Record(r *notifications.Report) {
	m.runs.Inc()

	outcomes := map[string]int{
		"eligible":           r.Eligible,
		"skipped_opt_out":    r.SkippedOptOut,
		"skipped_no_devices": r.SkippedNoDevices,
		"skipped_hour":       r.SkippedHour,
		"skipped_cadence":    r.SkippedCadence,
		"skipped_invalid":    r.SkippedInvalid,
		"skipped_duplicate":  r.SkippedDuplicate,
	}
	for outcome, n := range outcomes {
		m.subscribers.WithLabelValues(outcome).Add(float64(n))
	}

	m.sends.WithLabelValues("whatsapp", "sent").Add(float64(r.MessagingSent))
	m.sends.WithLabelValues("whatsapp", "error").Add(float64(r.MessagingErrors))
	m.sends.WithLabelValues("email", "sent").Add(float64(r.EmailSent))
	m.sends.WithLabelValues("email", "error").Add(float64(r.EmailErrors))
	m.batches.Add(float64(r.BatchCount))
	m.duration.Observe(r.Duration.Seconds())
	m.lastRun.Set(float64(r.RunInstant.Unix()))
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Push sends the registry to a Pushgateway. Used by one-shot CLI runs.
func (m *Metrics) Push(url string) error {
	if err := push.New(url, jobName).Gatherer(m.registry).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
