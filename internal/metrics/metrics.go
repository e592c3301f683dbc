// Package metrics exposes Prometheus counters for the capture pipeline.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Notification outcomes.
const (
	NotificationAccepted  = "accepted"
	NotificationCoalesced = "coalesced"
)

// Capture outcomes.
const (
	CaptureBaseline  = "baseline"
	CaptureUnchanged = "unchanged"
	CaptureChanged   = "changed"
	CaptureReadError = "read_error"
	CaptureStoreErr  = "store_error"
	CaptureAbandoned = "abandoned"
)

// Metrics groups the pipeline collectors. The zero value is not usable;
// call New.
type Metrics struct {
	reg prometheus.Gatherer

	notifications   *prometheus.CounterVec
	captures        *prometheus.CounterVec
	changeRecords   prometheus.Counter
	captureDuration prometheus.Histogram
}

// New registers the pipeline collectors with reg. Passing nil registers
// with a fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sheetlog_notifications_total",
			Help: "File notifications by debounce outcome",
		}, []string{"outcome"}),
		captures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sheetlog_captures_total",
			Help: "Capture attempts by outcome",
		}, []string{"outcome"}),
		changeRecords: f.NewCounter(prometheus.CounterOpts{
			Name: "sheetlog_change_records_total",
			Help: "Change records written",
		}),
		captureDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sheetlog_capture_duration_seconds",
			Help:    "Read, diff and persist time per capture, excluding the settle delay",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
}

// Notification counts a notification with the given outcome.
func (m *Metrics) Notification(outcome string) {
	m.notifications.WithLabelValues(outcome).Inc()
}

// Capture counts a finished capture attempt.
func (m *Metrics) Capture(outcome string, elapsed time.Duration) {
	m.captures.WithLabelValues(outcome).Inc()
	if outcome != CaptureAbandoned {
		m.captureDuration.Observe(elapsed.Seconds())
	}
}

// ChangeRecord counts a written change record.
func (m *Metrics) ChangeRecord() {
	m.changeRecords.Inc()
}

// Gatherer returns the registry backing m.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.reg
}

// Handler returns an HTTP handler exposing m in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is canceled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return m.serve(ctx, ln)
}

func (m *Metrics) serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
