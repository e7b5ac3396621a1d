package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/gearshare-backend/pkg/enums"
)

// BookingMetrics counts booking lifecycle changes by resulting status.
type BookingMetrics struct {
	transitions *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_transitions_total",
		Help:      "Booking creations and status transitions by resulting status.",
	}, []string{"status"})
	reg.MustRegister(transitions)
	return &BookingMetrics{transitions: transitions}
}

func (b *BookingMetrics) IncTransition(status enums.BookingStatus) {
	if b == nil || b.transitions == nil {
		return
	}
	b.transitions.WithLabelValues(normalizeLabel(status.String())).Inc()
}
