// Package metrics records insertion outcomes.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives insertion observations.
type Recorder interface {
	// ObserveInsertion records one finished insertion. outcome is "ok" or
	// the failing stage; class is "embeddable", "linkable" or "".
	ObserveInsertion(outcome, class string, bytes int64, d time.Duration)
}

// Noop discards observations.
type Noop struct{}

// ObserveInsertion does nothing.
func (Noop) ObserveInsertion(string, string, int64, time.Duration) {}

// Prometheus implements Recorder with Prometheus collectors.
type Prometheus struct {
	reg       *prom.Registry
	outcomes  *prom.CounterVec
	duration  prom.Histogram
	copiedOut prom.Counter
}

// NewPrometheus registers the collectors on reg (a fresh registry when nil).
func NewPrometheus(reg *prom.Registry) *Prometheus {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	p := &Prometheus{
		reg: reg,
		outcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "localref",
			Name:      "insertions_total",
			Help:      "Insertions by outcome and file class",
		}, []string{"outcome", "class"}),
		duration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "localref",
			Name:      "insertion_duration_seconds",
			Help:      "Time from pick to inserted reference",
			Buckets:   prom.DefBuckets,
		}),
		copiedOut: prom.NewCounter(prom.CounterOpts{
			Namespace: "localref",
			Name:      "copied_bytes_total",
			Help:      "Bytes copied into the vault",
		}),
	}
	reg.MustRegister(p.outcomes, p.duration, p.copiedOut)
	return p
}

// ObserveInsertion implements Recorder.
func (p *Prometheus) ObserveInsertion(outcome, class string, bytes int64, d time.Duration) {
	p.outcomes.WithLabelValues(outcome, class).Inc()
	p.duration.Observe(d.Seconds())
	if outcome == "ok" && bytes > 0 {
		p.copiedOut.Add(float64(bytes))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
