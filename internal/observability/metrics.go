package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeDone       = "done"
	OutcomeIncomplete = "incomplete"
	OutcomeFailed     = "failed"
)

var (
	registerOnce sync.Once

	// Registry holds only compcheck metrics so a textfile dump stays small.
	Registry = prometheus.NewRegistry()

	wireMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "compcheck",
			Subsystem: "wire",
			Name:      "messages_total",
			Help:      "Frames received from the endpoint.",
		},
		[]string{"endpoint"},
	)
	registryGlobals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "compcheck",
			Subsystem: "registry",
			Name:      "globals_total",
			Help:      "wl_registry.global events decoded.",
		},
		[]string{"endpoint"},
	)
	registryUnrecognized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "compcheck",
			Subsystem: "registry",
			Name:      "unrecognized_total",
			Help:      "Messages received that the collector does not handle.",
		},
		[]string{"endpoint"},
	)
	endpointProbes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "compcheck",
			Subsystem: "endpoint",
			Name:      "probes_total",
			Help:      "Endpoint enumerations by outcome.",
		},
		[]string{"endpoint", "outcome"},
	)
	endpointInterfaces = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "compcheck",
			Subsystem: "endpoint",
			Name:      "interfaces",
			Help:      "Distinct interfaces advertised by the endpoint.",
		},
		[]string{"endpoint"},
	)
	handshakeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "compcheck",
			Subsystem: "registry",
			Name:      "handshake_duration_seconds",
			Help:      "Time from connect to sync done or failure.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"endpoint"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		Registry.MustRegister(wireMessages, registryGlobals, registryUnrecognized,
			endpointProbes, endpointInterfaces, handshakeDuration)
	})
}

// ProbeRecord summarises one endpoint enumeration.
type ProbeRecord struct {
	Endpoint     string
	Outcome      string
	Messages     int
	Globals      int
	Unrecognized int
	Interfaces   int
	Duration     time.Duration
}

func RecordProbe(r ProbeRecord) {
	RegisterMetrics()
	wireMessages.WithLabelValues(r.Endpoint).Add(float64(r.Messages))
	registryGlobals.WithLabelValues(r.Endpoint).Add(float64(r.Globals))
	registryUnrecognized.WithLabelValues(r.Endpoint).Add(float64(r.Unrecognized))
	endpointProbes.WithLabelValues(r.Endpoint, r.Outcome).Inc()
	endpointInterfaces.WithLabelValues(r.Endpoint).Set(float64(r.Interfaces))
	handshakeDuration.WithLabelValues(r.Endpoint).Observe(r.Duration.Seconds())
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node_exporter textfile collector.
func WriteTextfile(path string) error {
	RegisterMetrics()
	return prometheus.WriteToTextfile(path, Registry)
}
