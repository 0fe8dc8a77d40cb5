package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the punch pipeline.
// Tracks punch outcomes, identification scans and capture device contention.
type Metrics struct {
	PunchTotal           *prometheus.CounterVec
	PunchDuration        prometheus.Histogram
	IdentifyTotal        *prometheus.CounterVec
	CandidatesScanned    prometheus.Histogram
	DeviceWaitDuration   prometheus.Histogram
	RegistrationFailures prometheus.Counter
	NotificationFailures prometheus.Counter
}

// New registers all metrics on reg. Pass prometheus.DefaultRegisterer in
// production and prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PunchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bioponto_punch_total",
			Help: "Punch attempts by result (entry, exit, or rejection reason)",
		}, []string{"result"}),
		PunchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bioponto_punch_duration_seconds",
			Help:    "Duration of a punch request from device lock to persisted outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		IdentifyTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bioponto_identify_total",
			Help: "Identification scans by result",
		}, []string{"result"}),
		CandidatesScanned: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bioponto_identify_candidates_scanned",
			Help:    "Number of stored templates compared per identification",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		DeviceWaitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bioponto_device_wait_duration_seconds",
			Help:    "Time spent waiting for the exclusive capture device",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 30},
		}),
		RegistrationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "bioponto_registration_failures_total",
			Help: "Punches committed locally but rejected by the payroll system",
		}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "bioponto_notification_failures_total",
			Help: "Best-effort notifications that could not be delivered",
		}),
	}
}

// ObservePunch records the result label and the duration of a punch.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObservePunch(result string, start time.Time) {
	m.PunchTotal.WithLabelValues(result).Inc()
	m.PunchDuration.Observe(time.Since(start).Seconds())
}

// ObserveIdentify records an identification result and how many templates were compared.
func (m *Metrics) ObserveIdentify(result string, scanned int) {
	m.IdentifyTotal.WithLabelValues(result).Inc()
	m.CandidatesScanned.Observe(float64(scanned))
}

// ObserveDeviceWait records how long a caller queued for the device.
func (m *Metrics) ObserveDeviceWait(start time.Time) {
	m.DeviceWaitDuration.Observe(time.Since(start).Seconds())
}

// IncrementRegistrationFailure records a failed downstream registration.
func (m *Metrics) IncrementRegistrationFailure() {
	m.RegistrationFailures.Inc()
}

// IncrementNotificationFailure records a failed notification.
func (m *Metrics) IncrementNotificationFailure() {
	m.NotificationFailures.Inc()
}
