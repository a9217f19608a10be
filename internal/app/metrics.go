package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dshills/uikit/internal/widget"
)

// Metrics records dispatch and rendering activity in a private registry.
// It implements widget.Observer.
type Metrics struct {
	registry *prometheus.Registry

	fires       *prometheus.CounterVec
	invocations *prometheus.CounterVec
	widgets     prometheus.Gauge
	frames      prometheus.Histogram
}

// NewMetrics creates the metric set.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fires: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "uikit",
				Name:      "signal_fires_total",
				Help:      "Total number of signal dispatches",
			},
			[]string{"signal"},
		),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "uikit",
				Name:      "handler_invocations_total",
				Help:      "Total number of handler invocations",
			},
			[]string{"signal"},
		),
		widgets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "uikit",
			Name:      "widgets",
			Help:      "Number of live widgets",
		}),
		frames: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "uikit",
			Name:      "frame_duration_seconds",
			Help:      "Time spent drawing a frame",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05},
		}),
	}
	m.registry.MustRegister(
		m.fires,
		m.invocations,
		m.widgets,
		m.frames,
		collectors.NewGoCollector(),
	)
	return m
}

// Fired implements widget.Observer.
func (m *Metrics) Fired(sig widget.Signal) {
	m.fires.WithLabelValues(string(sig)).Inc()
}

// Invoked implements widget.Observer.
func (m *Metrics) Invoked(sig widget.Signal) {
	m.invocations.WithLabelValues(string(sig)).Inc()
}

// WidgetCount implements widget.Observer.
func (m *Metrics) WidgetCount(n int) {
	m.widgets.Set(float64(n))
}

// RecordFrame records frame timing.
func (m *Metrics) RecordFrame(d time.Duration) {
	m.frames.Observe(d.Seconds())
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// metricsServer serves /metrics until shut down.
type metricsServer struct {
	srv    *http.Server
	ln     net.Listener
	logger zerolog.Logger
	done   chan struct{}
}

// startMetricsServer listens on addr and serves m in the background.
func startMetricsServer(addr string, m *Metrics, logger zerolog.Logger) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	s := &metricsServer{
		srv:    &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:     ln,
		logger: logger,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("metrics server")
		}
	}()
	logger.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
	return s, nil
}

// Addr returns the address the server listens on.
func (s *metricsServer) Addr() string {
	return s.ln.Addr().String()
}

func (s *metricsServer) shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	<-s.done
	return err
}
