// Package metrics implements framelink.StatsSink with Prometheus
// collectors, so an Engine's frame/failure counts can be scraped directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sparques/framelink"
)

// Config mirrors the namespacing knobs the pack's Prometheus middleware
// exposes: a registerable namespace/subsystem plus the registry to attach
// collectors to, defaulting to the global DefaultRegisterer.
type Config struct {
	Namespace   string
	Subsystem   string
	ConstLabels prometheus.Labels
	Registry    prometheus.Registerer
}

// Option configures Config.
type Option func(*Config)

// WithNamespace sets the metrics namespace. Default "framelink".
func WithNamespace(ns string) Option { return func(c *Config) { c.Namespace = ns } }

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(sub string) Option { return func(c *Config) { c.Subsystem = sub } }

// WithConstLabels attaches constant labels to every collector.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) { c.ConstLabels = labels }
}

// WithRegistry sets the registry collectors are registered against.
// Default prometheus.DefaultRegisterer.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = reg }
}

func defaultConfig() Config {
	return Config{
		Namespace: "framelink",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Sink implements framelink.StatsSink.
type Sink struct {
	framesSent     prometheus.Counter
	framesReceived prometheus.Counter
	payloadBytes   *prometheus.HistogramVec
	sendFailures   *prometheus.CounterVec
	receiveFailures *prometheus.CounterVec
}

// New registers a fresh set of collectors and returns a Sink ready to pass
// to framelink.WithStatsSink.
func New(opts ...Option) *Sink {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Sink{
		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "frames_sent_total",
			Help:        "Total number of frames successfully sent.",
			ConstLabels: cfg.ConstLabels,
		}),
		framesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "frames_received_total",
			Help:        "Total number of frames successfully received and validated.",
			ConstLabels: cfg.ConstLabels,
		}),
		payloadBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "payload_bytes",
			Help:        "Payload size in bytes, by direction.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     []float64{1, 4, 16, 64, 128, 254},
		}, []string{"direction"}),
		sendFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "send_failures_total",
			Help:        "Total number of failed Send calls, by status code.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"status"}),
		receiveFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "receive_failures_total",
			Help:        "Total number of failed Receive calls, by status code.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"status"}),
	}
}

// FrameSent implements framelink.StatsSink.
func (s *Sink) FrameSent(payloadSize int) {
	s.framesSent.Inc()
	s.payloadBytes.WithLabelValues("tx").Observe(float64(payloadSize))
}

// FrameReceived implements framelink.StatsSink.
func (s *Sink) FrameReceived(payloadSize int) {
	s.framesReceived.Inc()
	s.payloadBytes.WithLabelValues("rx").Observe(float64(payloadSize))
}

// SendFailed implements framelink.StatsSink.
func (s *Sink) SendFailed(code framelink.Status) {
	s.sendFailures.WithLabelValues(code.String()).Inc()
}

// ReceiveFailed implements framelink.StatsSink.
func (s *Sink) ReceiveFailed(code framelink.Status) {
	s.receiveFailures.WithLabelValues(code.String()).Inc()
}
