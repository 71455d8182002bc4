package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "repostctl"

const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
	OutcomeSkipped = "skipped"
)

// Metrics is safe to use through a nil pointer; every recorder is then a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	remoteCalls    *prometheus.CounterVec
	remoteRetries  *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	cacheRefresh   *prometheus.CounterVec
	cacheFallback  prometheus.Counter
	uploads        *prometheus.CounterVec
}

func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		gatherer: reg,
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Remote calls by operation and outcome",
		}, []string{"op", "outcome"}),
		remoteRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_retries_total",
			Help:      "Retried remote call attempts by operation",
		}, []string{"op"}),
		remoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Wall-clock duration of remote calls including retries",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"op"}),
		cacheRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_refresh_total",
			Help:      "Repost cache refreshes by outcome",
		}, []string{"outcome"}),
		cacheFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_fallback_total",
			Help:      "Repost checks answered by the fallback detector",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repost_uploads_total",
			Help:      "Per-account repost uploads by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.remoteCalls, m.remoteRetries, m.remoteDuration, m.cacheRefresh, m.cacheFallback, m.uploads)

	return m
}

func (m *Metrics) ObserveRemoteCall(op, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.remoteCalls.WithLabelValues(op, outcome).Inc()
	m.remoteDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) IncRemoteRetry(op string) {
	if m == nil {
		return
	}
	m.remoteRetries.WithLabelValues(op).Inc()
}

func (m *Metrics) IncCacheRefresh(outcome string) {
	if m == nil {
		return
	}
	m.cacheRefresh.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncCacheFallback() {
	if m == nil {
		return
	}
	m.cacheFallback.Inc()
}

func (m *Metrics) IncUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve metrics: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	}
}
