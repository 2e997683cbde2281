// Package metrics provides the Prometheus collectors backing
// engine.Store's optional Metrics hook (SPEC_FULL.md §3.1).
//
// Grounded on graph/quadstore.go's Stats plumbing (teacher: a QuadStore
// reports Size/counts to callers), generalized from a poll-on-demand
// snapshot into live counters/histograms updated as the engine runs.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors implements engine.Metrics against a set of Prometheus
// collectors registered with reg.
type Collectors struct {
	appendsTotal     prometheus.Counter
	candidateSetSize prometheus.Histogram
	cascadeDepth     prometheus.Histogram
	ruleFiringsTotal prometheus.Counter
}

// New registers the engine's collectors with reg and returns a Collectors
// ready to pass to engine.WithMetrics.
func New(reg *prometheus.Registry) *Collectors {
	c := &Collectors{
		appendsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quadreactor_quads_appended_total",
			Help: "Total number of quads successfully appended (including deduped ones).",
		}),
		candidateSetSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quadreactor_watcher_candidate_set_size",
			Help:    "Size of the selective-activation index's candidate-watcher set per appended quad.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		cascadeDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quadreactor_cascade_depth",
			Help:    "Recursion depth reached by a top-level append's cascade of callback-triggered appends.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		ruleFiringsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quadreactor_rule_firings_total",
			Help: "Total number of reified-rule firings recorded.",
		}),
	}
	reg.MustRegister(c.appendsTotal, c.candidateSetSize, c.cascadeDepth, c.ruleFiringsTotal)
	return c
}

func (c *Collectors) IncAppends()                  { c.appendsTotal.Inc() }
func (c *Collectors) ObserveCandidateSetSize(n int) { c.candidateSetSize.Observe(float64(n)) }
func (c *Collectors) ObserveCascadeDepth(n int)     { c.cascadeDepth.Observe(float64(n)) }
func (c *Collectors) IncRuleFirings()               { c.ruleFiringsTotal.Inc() }
