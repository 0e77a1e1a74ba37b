package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nateiva",
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"status"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nateiva",
			Name:      "booking_conflicts_total",
			Help:      "Rejected create/reschedule attempts due to interval overlap.",
		},
	)

	slotsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nateiva",
			Name:      "slots_generated_total",
			Help:      "Bookable time slots produced by the generator.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingTransitions, bookingConflicts, slotsGenerated)
	})
}

// IncTransition counts a booking entering the given status.
func IncTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

// IncConflict counts a conflict-rejected write.
func IncConflict() {
	bookingConflicts.Inc()
}

// AddSlotsGenerated counts slots handed to the presentation layer.
func AddSlotsGenerated(n int) {
	slotsGenerated.Add(float64(n))
}
