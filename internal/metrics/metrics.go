package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters and gauges for the scheduling flow.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	scheduleChanges    *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	notifyLatency      prometheus.Histogram
	availableSlots     prometheus.Gauge
}

// NewBookingMetrics registers the collectors on reg, or on the default registerer when reg is nil.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		scheduleChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment",
			Subsystem: "schedule",
			Name:      "changes_total",
			Help:      "Admin schedule mutations by kind",
		}, []string{"kind"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment",
			Subsystem: "notification",
			Name:      "sent_total",
			Help:      "Confirmation notifications by status",
		}, []string{"status"}),
		notifyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "appointment",
			Subsystem: "notification",
			Name:      "latency_seconds",
			Help:      "Time spent delivering a confirmation",
			Buckets:   prometheus.DefBuckets,
		}),
		availableSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "appointment",
			Subsystem: "schedule",
			Name:      "available_slots",
			Help:      "Unbooked slots across all dates",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.scheduleChanges, m.notificationsTotal, m.notifyLatency, m.availableSlots)
	return m
}

// ObserveBooking counts a booking attempt; outcome is "booked", "rejected" or "unavailable".
func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

// ObserveScheduleChange counts an admin mutation such as "date_added".
func (m *BookingMetrics) ObserveScheduleChange(kind string) {
	if m == nil {
		return
	}
	m.scheduleChanges.WithLabelValues(kind).Inc()
}

// ObserveNotification records a delivery outcome and its duration.
func (m *BookingMetrics) ObserveNotification(status string, seconds float64) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(status).Inc()
	m.notifyLatency.Observe(seconds)
}

// SetAvailableSlots sets the available slot gauge.
func (m *BookingMetrics) SetAvailableSlots(n int) {
	if m == nil {
		return
	}
	m.availableSlots.Set(float64(n))
}
