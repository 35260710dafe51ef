package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config Prometheus 指标配置
type Config struct {
	// Namespace 默认 "dashboard"
	Namespace string
	Subsystem string
	Buckets   []float64
	// Registry 默认 prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		if namespace != "" {
			c.Namespace = namespace
		}
	}
}

func WithSubsystem(subsystem string) Option {
	return func(c *Config) { c.Subsystem = subsystem }
}

func WithBuckets(buckets []float64) Option {
	return func(c *Config) { c.Buckets = buckets }
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = registry }
}

func defaultConfig() Config {
	return Config{
		Namespace: "dashboard",
		Subsystem: "store",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics store 操作与会话的指标，实现 store.Recorder
type Metrics struct {
	opsTotal       *prometheus.CounterVec
	opDuration     *prometheus.HistogramVec
	runsInFlight   prometheus.Gauge
	activeSessions prometheus.Gauge
	sessionsTotal  prometheus.Counter
}

func New(opts ...Option) *Metrics {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		opsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "operations_total",
			Help:      "Total number of store operations by outcome",
		}, []string{"op", "status"}),

		opDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Store operation duration in seconds, including the remote call",
			Buckets:   cfg.Buckets,
		}, []string{"op"}),

		runsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "runs_in_flight",
			Help:      "Number of runModel calls currently waiting on the remote service",
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Number of live dashboard sessions",
		}),

		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "session",
			Name:      "created_total",
			Help:      "Total number of dashboard sessions created",
		}),
	}
}

func (m *Metrics) ObserveOp(op string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.opsTotal.WithLabelValues(op, status).Inc()
	m.opDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) RunStarted() {
	m.runsInFlight.Inc()
}

func (m *Metrics) RunFinished() {
	m.runsInFlight.Dec()
}

func (m *Metrics) SessionOpened() {
	m.sessionsTotal.Inc()
	m.activeSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}
