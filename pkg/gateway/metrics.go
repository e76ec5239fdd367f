package gateway

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	SessionsActive  prometheus.Gauge
	SessionsTotal   *prometheus.CounterVec
	SessionDuration prometheus.Histogram
	AudioBytesTotal *prometheus.CounterVec
	ProtocolErrors  *prometheus.CounterVec
	QuestionsTotal  prometheus.Counter
}

// NewMetrics creates and registers all gateway metrics on a private
// registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "quizhost"
	}

	registry := prometheus.NewRegistry()

	sessionsActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Number of live trivia sessions currently open",
	})

	sessionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total live trivia sessions by terminal status",
		},
		[]string{"status"},
	)

	sessionDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "session_duration_seconds",
		Help:      "Live trivia session duration in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	audioBytesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_total",
			Help:      "PCM bytes relayed through live sessions",
		},
		[]string{"direction"},
	)

	protocolErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Client frames rejected by protocol validation",
		},
		[]string{"code"},
	)

	questionsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_generated_total",
		Help:      "Trivia questions prepared for sessions",
	})

	registry.MustRegister(
		sessionsActive,
		sessionsTotal,
		sessionDuration,
		audioBytesTotal,
		protocolErrors,
		questionsTotal,
	)

	return &Metrics{
		registry:        registry,
		SessionsActive:  sessionsActive,
		SessionsTotal:   sessionsTotal,
		SessionDuration: sessionDuration,
		AudioBytesTotal: audioBytesTotal,
		ProtocolErrors:  protocolErrors,
		QuestionsTotal:  questionsTotal,
	}
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSessionStart marks a session as open.
func (m *Metrics) RecordSessionStart() {
	m.SessionsActive.Inc()
}

// RecordSessionEnd marks a session as ended with a terminal status.
func (m *Metrics) RecordSessionEnd(status string, duration time.Duration) {
	m.SessionsActive.Dec()
	m.SessionsTotal.WithLabelValues(status).Inc()
	m.SessionDuration.Observe(duration.Seconds())
}

// RecordAudio counts relayed PCM bytes. Direction is "in" for
// client-to-host audio and "out" for host-to-client.
func (m *Metrics) RecordAudio(direction string, bytes int) {
	m.AudioBytesTotal.WithLabelValues(direction).Add(float64(bytes))
}

// RecordProtocolError counts a rejected client frame.
func (m *Metrics) RecordProtocolError(code string) {
	m.ProtocolErrors.WithLabelValues(code).Inc()
}

// RecordQuestions counts prepared questions.
func (m *Metrics) RecordQuestions(n int) {
	m.QuestionsTotal.Add(float64(n))
}
