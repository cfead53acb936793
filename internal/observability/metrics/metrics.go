package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking core. All
// observers are nil-receiver safe so wiring them is optional.
type BookingMetrics struct {
	mutationsTotal      *prometheus.CounterVec
	broadcastsTotal     *prometheus.CounterVec
	availabilityLatency prometheus.Histogram
	subscribers         *prometheus.GaugeVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "mutations_total",
			Help:      "Total store mutations by collection and operation",
		}, []string{"collection", "op", "status"}),
		broadcastsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "broadcasts_total",
			Help:      "Total snapshot broadcasts by collection",
		}, []string{"collection"}),
		availabilityLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "availability_latency_seconds",
			Help:      "Latency of availability computations",
			Buckets:   prometheus.DefBuckets,
		}),
		subscribers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "subscribers",
			Help:      "Live snapshot subscribers by collection",
		}, []string{"collection"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.mutationsTotal, m.broadcastsTotal, m.availabilityLatency, m.subscribers)
	return m
}

func (m *BookingMetrics) ObserveMutation(collection, op string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.mutationsTotal.WithLabelValues(collection, op, status).Inc()
}

func (m *BookingMetrics) ObserveBroadcast(collection string) {
	if m == nil {
		return
	}
	m.broadcastsTotal.WithLabelValues(collection).Inc()
}

func (m *BookingMetrics) ObserveAvailability(seconds float64) {
	if m == nil {
		return
	}
	m.availabilityLatency.Observe(seconds)
}

func (m *BookingMetrics) SetSubscribers(collection string, n int) {
	if m == nil {
		return
	}
	m.subscribers.WithLabelValues(collection).Set(float64(n))
}
