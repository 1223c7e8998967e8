package metrics

import "github.com/prometheus/client_golang/prometheus"

// Enquiry results recorded at the request boundary.
const (
	ResultAccepted         = "accepted"
	ResultInvalid          = "invalid"
	ResultFailed           = "failed"
	ResultMethodNotAllowed = "method_not_allowed"
)

// RelayMetrics exposes counters/histograms for the enquiry relay.
type RelayMetrics struct {
	enquiriesTotal  *prometheus.CounterVec
	channelTotal    *prometheus.CounterVec
	channelDuration *prometheus.HistogramVec
}

func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	m := &RelayMetrics{
		enquiriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voiceflow",
			Subsystem: "enquiry",
			Name:      "submissions_total",
			Help:      "Enquiry submissions by result",
		}, []string{"result"}),
		channelTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voiceflow",
			Subsystem: "enquiry",
			Name:      "channel_dispatch_total",
			Help:      "Channel dispatch attempts by channel and status",
		}, []string{"channel", "status"}),
		channelDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voiceflow",
			Subsystem: "enquiry",
			Name:      "channel_dispatch_seconds",
			Help:      "Latency of outbound provider calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.enquiriesTotal, m.channelTotal, m.channelDuration)
	return m
}

func (m *RelayMetrics) ObserveEnquiry(result string) {
	if m == nil {
		return
	}
	m.enquiriesTotal.WithLabelValues(result).Inc()
}

// ObserveChannel records a settled channel attempt. Skipped channels carry no
// latency sample.
func (m *RelayMetrics) ObserveChannel(channel, status string, seconds float64) {
	if m == nil {
		return
	}
	m.channelTotal.WithLabelValues(channel, status).Inc()
	if status != "skipped" {
		m.channelDuration.WithLabelValues(channel).Observe(seconds)
	}
}
