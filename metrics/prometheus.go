// Package metrics provides the Prometheus-backed implementation of
// dispatch.Metrics. The control package owns serving it over HTTP.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a Prometheus-backed dispatch.Metrics. Each instance owns its
// own registry rather than the global default, so a process hosting more
// than one Dispatch (as the benchmark harness does) can construct one
// Metrics per Dispatch without a duplicate-registration panic.
type Metrics struct {
	registry *prometheus.Registry

	queueDepth     prometheus.Gauge
	paceInterval   prometheus.Histogram
	dropsTotal     *prometheus.CounterVec
	serviceTime    prometheus.Histogram
	timerFired     prometheus.Counter
	timerCanceled  prometheus.Counter
	loopbackTotal  prometheus.Counter
	messagesSent   *prometheus.CounterVec
	messagesRecv   *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry, registering every
// series under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ingress_queue_depth",
		Help:      "Current length of the Dispatch ingress queue",
	})

	m.paceInterval = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pace_interval_seconds",
		Help:      "Observed interval between pace firings",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3.3s
	})

	m.dropsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingress_drops_total",
		Help:      "Ingress items dropped by reason",
	}, []string{"reason"})

	m.serviceTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "service_time_seconds",
		Help:      "Time to decode, verify, and deliver one ingress item",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 16), // 10us to ~330ms
	})

	m.timerFired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "timers_fired_total",
		Help:      "Timers that reached their deadline and invoked OnTimer",
	})

	m.timerCanceled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "timers_canceled_total",
		Help:      "Timer cancellations requested via UnsetTimer",
	})

	m.loopbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loopback_total",
		Help:      "Messages a Receiver injected back into its own ingress queue",
	})

	m.messagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Messages handed to egress by tag",
	}, []string{"tag"})

	m.messagesRecv = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_received_total",
		Help:      "Messages delivered to OnMessage by tag",
	}, []string{"tag"})

	m.registry.MustRegister(
		m.queueDepth,
		m.paceInterval,
		m.dropsTotal,
		m.serviceTime,
		m.timerFired,
		m.timerCanceled,
		m.loopbackTotal,
		m.messagesSent,
		m.messagesRecv,
	)

	return m
}

// Registry returns the registry this instance registered against, for a
// control server to expose.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) SetQueueDepth(n int) { m.queueDepth.Set(float64(n)) }

func (m *Metrics) ObservePaceInterval(d time.Duration) { m.paceInterval.Observe(d.Seconds()) }

func (m *Metrics) IncDrop(reason string) { m.dropsTotal.WithLabelValues(reason).Inc() }

func (m *Metrics) ObserveServiceTime(d time.Duration) { m.serviceTime.Observe(d.Seconds()) }

func (m *Metrics) IncTimerFired() { m.timerFired.Inc() }

func (m *Metrics) IncTimerCanceled() { m.timerCanceled.Inc() }

func (m *Metrics) IncLoopback() { m.loopbackTotal.Inc() }

func (m *Metrics) IncMessageSent(tag string) { m.messagesSent.WithLabelValues(tag).Inc() }

func (m *Metrics) IncMessageReceived(tag string) { m.messagesRecv.WithLabelValues(tag).Inc() }

// NullMetrics is a no-op dispatch.Metrics, for callers that want the
// interface satisfied without a Prometheus registry (e.g. unit tests
// outside the dispatch package itself).
type NullMetrics struct{}

func (NullMetrics) SetQueueDepth(int)                 {}
func (NullMetrics) ObservePaceInterval(time.Duration) {}
func (NullMetrics) IncDrop(string)                    {}
func (NullMetrics) ObserveServiceTime(time.Duration)  {}
func (NullMetrics) IncTimerFired()                    {}
func (NullMetrics) IncTimerCanceled()                 {}
func (NullMetrics) IncLoopback()                      {}
func (NullMetrics) IncMessageSent(string)             {}
func (NullMetrics) IncMessageReceived(string)          {}
