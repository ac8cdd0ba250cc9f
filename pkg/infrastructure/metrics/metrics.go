// Package metrics exposes Prometheus collectors for a running check.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/usernamecheck/username-checker/pkg/domain/entity"
)

// Exporter implements application.MetricsObserver on its own registry
type Exporter struct {
	registry *prometheus.Registry
	results  *prometheus.CounterVec
	inFlight prometheus.Gauge
	total    prometheus.Gauge
	paused   prometheus.Gauge
	rate     prometheus.Gauge
	logger   *zap.Logger
}

// NewExporter creates an exporter with fresh collectors
func NewExporter(logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Exporter{
		registry: reg,
		results: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "username_checker_results_total",
				Help: "Total number of identifiers checked, labeled by result status.",
			},
			[]string{"status"},
		),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "username_checker_in_flight",
			Help: "Number of probes currently running.",
		}),
		total: factory.NewGauge(prometheus.GaugeOpts{
			Name: "username_checker_candidates",
			Help: "Number of identifiers scheduled in this run.",
		}),
		paused: factory.NewGauge(prometheus.GaugeOpts{
			Name: "username_checker_paused",
			Help: "1 while submission is paused.",
		}),
		rate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "username_checker_rate_per_minute",
			Help: "Overall throughput of the run in identifiers per minute.",
		}),
		logger: logger,
	}
}

// OnResult counts one recorded identifier
func (e *Exporter) OnResult(_ string, result entity.CheckResult) {
	e.results.WithLabelValues(result.Status.String()).Inc()
}

// OnMetricsUpdate refreshes the gauges
func (e *Exporter) OnMetricsUpdate(m *entity.Metrics) {
	e.inFlight.Set(float64(m.InFlight))
	e.total.Set(float64(m.Total))
	e.rate.Set(m.RatePerMinute())
	if m.Paused {
		e.paused.Set(1)
	} else {
		e.paused.Set(0)
	}
}

// Handler returns the scrape handler for this exporter's registry
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done
func (e *Exporter) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	e.logger.Info("serving metrics", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
