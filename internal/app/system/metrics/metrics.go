// Package metrics exposes Prometheus instruments for announcement operations.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNotFound     = "not_found"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)

var (
	AnnouncementOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hsms_announcement_operations_total",
		Help: "Announcement operations by operation and outcome",
	}, []string{"op", "outcome"})

	AnnouncementOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hsms_announcement_operation_duration_seconds",
		Help:    "Time spent in announcement operations, including store calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	ActiveAnnouncements = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hsms_active_announcements",
		Help: "Number of announcements returned by the last public listing",
	})
)

// ObserveOperation records one finished operation.
func ObserveOperation(op, outcome string, duration time.Duration) {
	op = strings.TrimSpace(op)
	if op == "" {
		op = "unknown"
	}
	if outcome == "" {
		outcome = OutcomeOK
	}
	AnnouncementOperations.WithLabelValues(op, outcome).Inc()
	AnnouncementOperationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// SetActiveAnnouncements records the size of the last public listing.
func SetActiveAnnouncements(count int) {
	if count < 0 {
		count = 0
	}
	ActiveAnnouncements.Set(float64(count))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
