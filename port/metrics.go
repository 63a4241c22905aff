package port

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics mirrors the shape of transport.GetStats()'s EndpointStats: a
// small set of counters/gauges scoped to one port, collected into a
// private registry rather than the global default one so embedding this
// module into a larger process never risks a duplicate-metric panic.
type metrics struct {
	registry          *prometheus.Registry
	callsSent         prometheus.Counter
	requestsHandled   prometheus.Counter
	objectsExported   prometheus.Counter
	activeSlots       prometheus.GaugeFunc
	oldestPendingSlot prometheus.GaugeFunc
}

func newMetrics(portID string, pending func() int, oldestPendingAge func() time.Duration) *metrics {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"port": portID}
	m := &metrics{
		registry: reg,
		callsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rto",
			Name:        "calls_sent_total",
			Help:        "Number of outgoing requests issued on this port.",
			ConstLabels: labels,
		}),
		requestsHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rto",
			Name:        "requests_handled_total",
			Help:        "Number of incoming requests dispatched on this port.",
			ConstLabels: labels,
		}),
		objectsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rto",
			Name:        "objects_exported_total",
			Help:        "Number of objects registered into this port's object table.",
			ConstLabels: labels,
		}),
	}
	m.activeSlots = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "rto",
		Name:        "active_slots",
		Help:        "Number of requests currently awaiting a response on this port.",
		ConstLabels: labels,
	}, func() float64 { return float64(pending()) })
	m.oldestPendingSlot = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "rto",
		Name:        "oldest_pending_slot_age_seconds",
		Help:        "Age of this port's longest-outstanding call, derived from cmn/mono's monotonic clock. Zero when nothing is pending.",
		ConstLabels: labels,
	}, func() float64 { return oldestPendingAge().Seconds() })

	reg.MustRegister(m.callsSent, m.requestsHandled, m.objectsExported, m.activeSlots, m.oldestPendingSlot)
	return m
}

// Registry exposes the port's private metrics registry so an embedder can
// fold it into its own /metrics endpoint.
func (p *Port) Registry() *prometheus.Registry { return p.metrics.registry }
