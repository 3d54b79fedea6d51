package metrics

import "github.com/prometheus/client_golang/prometheus"

// DispatchMetrics counts the outcomes of notification deliveries.
type DispatchMetrics struct {
	sent       prometheus.Counter
	suppressed prometheus.Counter
	failed     prometheus.Counter
}

// NewDispatchMetrics registers the notification delivery counters on the
// provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	sent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Availability digests delivered to recipients.",
	})
	suppressed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_suppressed_total",
		Help: "Digests skipped because the recipient opted out or has no matches.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Digests that failed to deliver.",
	})
	reg.MustRegister(sent, suppressed, failed)
	return &DispatchMetrics{
		sent:       sent,
		suppressed: suppressed,
		failed:     failed,
	}
}

// IncSent increments the delivered counter.
func (d *DispatchMetrics) IncSent() {
	if d == nil || d.sent == nil {
		return
	}
	d.sent.Inc()
}

// IncSuppressed increments the suppressed counter.
func (d *DispatchMetrics) IncSuppressed() {
	if d == nil || d.suppressed == nil {
		return
	}
	d.suppressed.Inc()
}

// IncFailed increments the failed counter.
func (d *DispatchMetrics) IncFailed() {
	if d == nil || d.failed == nil {
		return
	}
	d.failed.Inc()
}
