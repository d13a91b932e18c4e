// Package metrics backs the orchestrator's MetricsSnapshot with a private
// Prometheus registry (github.com/prometheus/client_golang) so the
// observability surface is satisfied with Prometheus's own exposition
// format rather than a hand-rolled one.
package metrics

import (
	"bytes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/atomic"

	"solana-arbitrage-core/token"
)

// Collector owns one private registry and the counters/gauges the
// DetectionOrchestrator updates on every pass. It is safe for concurrent
// use: every mutating method is either a Prometheus primitive (already
// safe) or an atomic field.
type Collector struct {
	registry *prometheus.Registry

	passesTotal        prometheus.Counter
	cyclesFoundTotal   prometheus.Counter
	opportunitiesTotal prometheus.Counter
	anomaliesTotal     prometheus.Counter
	droppedEmitTotal   prometheus.Counter
	perBaseCyclesFound *prometheus.CounterVec
	lastPassLatencyMs  prometheus.Gauge
	avgPassLatencyMs   prometheus.Gauge

	latencyEma atomic.Float64
	emaInit    atomic.Bool
}

// emaAlpha weights the most recent pass latency sample in the moving
// average; 0.2 gives roughly a 5-pass window, a reasonable smoothing
// constant for a sub-millisecond-to-low-millisecond signal.
const emaAlpha = 0.2

// NewCollector builds and registers a fresh metric set.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		passesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbitrage_detection_passes_total",
			Help: "Total number of completed detection passes.",
		}),
		cyclesFoundTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbitrage_cycles_found_total",
			Help: "Total number of raw profitable cycles found across all passes.",
		}),
		opportunitiesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbitrage_opportunities_emitted_total",
			Help: "Total number of OpportunityRecords published to the outbound channel.",
		}),
		anomaliesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbitrage_numeric_anomalies_total",
			Help: "Total number of per-base-token scans that panicked and were recovered.",
		}),
		droppedEmitTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbitrage_opportunities_dropped_total",
			Help: "Total number of opportunities dropped because the outbound channel was not draining.",
		}),
		perBaseCyclesFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbitrage_cycles_found_by_base_total",
			Help: "Cycles found per base token, keyed by base58 mint address.",
		}, []string{"base_token"}),
		lastPassLatencyMs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arbitrage_last_pass_latency_ms",
			Help: "Wall-clock duration of the most recently completed detection pass, in milliseconds.",
		}),
		avgPassLatencyMs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arbitrage_avg_pass_latency_ms",
			Help: "Exponential moving average of detection pass latency, in milliseconds.",
		}),
	}

	c.registry.MustRegister(
		c.passesTotal,
		c.cyclesFoundTotal,
		c.opportunitiesTotal,
		c.anomaliesTotal,
		c.droppedEmitTotal,
		c.perBaseCyclesFound,
		c.lastPassLatencyMs,
		c.avgPassLatencyMs,
	)
	return c
}

// RecordPass records one completed detection pass's latency.
func (c *Collector) RecordPass(latencyMs float64) {
	c.passesTotal.Inc()
	c.lastPassLatencyMs.Set(latencyMs)

	if !c.emaInit.Swap(true) {
		c.latencyEma.Store(latencyMs)
	} else {
		prev := c.latencyEma.Load()
		c.latencyEma.Store(prev + emaAlpha*(latencyMs-prev))
	}
	c.avgPassLatencyMs.Set(c.latencyEma.Load())
}

// RecordCyclesFound records how many raw cycles one base token's scan
// produced in the current pass.
func (c *Collector) RecordCyclesFound(base token.ID, n int) {
	if n <= 0 {
		return
	}
	c.cyclesFoundTotal.Add(float64(n))
	c.perBaseCyclesFound.WithLabelValues(base.String()).Add(float64(n))
}

// RecordOpportunityEmitted records one OpportunityRecord published
// downstream.
func (c *Collector) RecordOpportunityEmitted() {
	c.opportunitiesTotal.Inc()
}

// RecordAnomaly records one anomaly. The orchestrator calls it when a
// per-base-token scan panics; edges that cycle.Finder skips for a
// non-finite weight are not counted.
func (c *Collector) RecordAnomaly() {
	c.anomaliesTotal.Inc()
}

// RecordDropped records one opportunity dropped because the outbound
// channel was not draining (ChannelClosed / backpressure).
func (c *Collector) RecordDropped() {
	c.droppedEmitTotal.Inc()
}

// AvgLatencyMs returns the current moving-average pass latency.
func (c *Collector) AvgLatencyMs() float64 {
	return c.latencyEma.Load()
}

// Snapshot renders the registry's current state in Prometheus text
// exposition format via expfmt. Callers that want a real scrape endpoint
// should wrap c.registry in promhttp.Handler instead; this method exists
// for the orchestrator's synchronous snapshot accessor.
func (c *Collector) Snapshot() string {
	gathered, err := c.registry.Gather()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range gathered {
		if err := enc.Encode(mf); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}
