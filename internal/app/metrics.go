package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Inkubator-IT/admin/internal/sanitize"
)

// runMetrics holds the counters of one run. Each run owns its registry so
// the textfile only reflects that run.
type runMetrics struct {
	reg *prometheus.Registry

	payloads     *prometheus.CounterVec
	failures     *prometheus.CounterVec
	nodesKept    prometheus.Counter
	nodesDropped prometheus.Counter
	marksDropped prometheus.Counter
	attrsDropped prometheus.Counter
	limited      prometheus.Counter
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
}

func newRunMetrics() *runMetrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &runMetrics{
		reg: reg,
		payloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_sanitize_payloads_total",
			Help: "Payloads sanitized, by detected format",
		}, []string{"format"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_sanitize_validation_failures_total",
			Help: "Payloads rejected by form validation, by format",
		}, []string{"format"}),
		nodesKept: f.NewCounter(prometheus.CounterOpts{
			Name: "admin_sanitize_nodes_kept_total",
			Help: "Document nodes and blocks kept",
		}),
		nodesDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "admin_sanitize_nodes_dropped_total",
			Help: "Document nodes and blocks removed by the allow-list",
		}),
		marksDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "admin_sanitize_marks_dropped_total",
			Help: "Marks removed from text nodes",
		}),
		attrsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "admin_sanitize_attrs_dropped_total",
			Help: "Node attributes removed",
		}),
		limited: f.NewCounter(prometheus.CounterOpts{
			Name: "admin_sanitize_limited_total",
			Help: "Nodes removed by depth or size limits",
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "admin_sanitize_cache_hits_total",
			Help: "Payloads served from the result cache",
		}),
		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "admin_sanitize_cache_misses_total",
			Help: "Payloads sanitized because no cached result existed",
		}),
	}
}

func (m *runMetrics) observe(format Format, st sanitize.Stats) {
	m.payloads.WithLabelValues(string(format)).Inc()
	m.nodesKept.Add(float64(st.NodesKept))
	m.nodesDropped.Add(float64(st.NodesDropped))
	m.marksDropped.Add(float64(st.MarksDropped))
	m.attrsDropped.Add(float64(st.AttrsDropped))
	m.limited.Add(float64(st.Limited))
}

// writeTextfile writes the registry in the node-exporter textfile format.
func (m *runMetrics) writeTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
