// Package orchestrator runs the repeated detect-evaluate-publish cycle: on
// each pulse it snapshots the graph, scans every configured base token in
// parallel with cycle.Finder, evaluates qualifying cycles, and publishes
// OpportunityRecords downstream. It is the only core package that owns
// goroutines; the cmd/arbsim simulator starts its own as well.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"solana-arbitrage-core/cycle"
	"solana-arbitrage-core/evaluator"
	"solana-arbitrage-core/graph"
	"solana-arbitrage-core/metrics"
	"solana-arbitrage-core/token"
)

// DetectionOrchestrator wires the graph, CycleFinder and OpportunityEvaluator
// into the repeated pulse-driven detection loop. Construct with New and
// start the loop with Run in its own goroutine.
type DetectionOrchestrator struct {
	graph  *graph.ArbitrageGraph
	config *Config
	eval   evaluator.Evaluator
	clock  clock.Clock
	log    *zap.Logger
	stats  *metrics.Collector

	pulse chan struct{}
	out   chan evaluator.OpportunityRecord

	scratchMu sync.Mutex
	scratch   map[token.ID]*cycle.Scratch
}

// New builds a DetectionOrchestrator. outBuffer sizes the outbound
// OpportunityRecord channel; a send that would block when the buffer is
// full is dropped and counted rather than blocking the detection loop.
func New(g *graph.ArbitrageGraph, cfg *Config, stats *metrics.Collector, log *zap.Logger, outBuffer int) *DetectionOrchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &DetectionOrchestrator{
		graph:   g,
		config:  cfg,
		clock:   clock.New(),
		log:     log.Named("orchestrator"),
		stats:   stats,
		pulse:   make(chan struct{}, 1),
		out:     make(chan evaluator.OpportunityRecord, outBuffer),
		scratch: make(map[token.ID]*cycle.Scratch),
	}
}

// Pulse wakes the detection loop. It never blocks: a pending, not-yet-drained
// pulse already coalesces any number of calls into one work unit.
func (o *DetectionOrchestrator) Pulse() {
	select {
	case o.pulse <- struct{}{}:
	default:
	}
}

// Opportunities returns the read side of the outbound OpportunityRecord
// channel. It is closed when Run returns.
func (o *DetectionOrchestrator) Opportunities() <-chan evaluator.OpportunityRecord {
	return o.out
}

// Run drives the Idle -> Draining pulses -> Snapshotting -> Scanning ->
// Evaluating -> Publishing -> Idle loop until ctx is cancelled or the
// pulse channel is closed by an external PulseCloser (neither currently
// exposed; ctx cancellation is the supported shutdown path). It closes the
// outbound channel before returning.
func (o *DetectionOrchestrator) Run(ctx context.Context) {
	defer close(o.out)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-o.pulse:
			if !ok {
				return
			}
			o.runPass(ctx)
		}
	}
}

func (o *DetectionOrchestrator) runPass(ctx context.Context) {
	start := o.clock.Now()
	cfg := o.config.snapshot()

	snap := o.graph.RLock()
	defer snap.Release()

	type baseResult struct {
		base   token.ID
		cycles []cycle.Cycle
	}

	results := make(chan baseResult, len(cfg.baseTokens))
	var wg sync.WaitGroup
	var errs error
	var errMu sync.Mutex

	finder := &cycle.Finder{MaxHops: cfg.maxHops, MinProfitBps: cfg.minProfitBps}

	for _, base := range cfg.baseTokens {
		if ctx.Err() != nil {
			break
		}
		base := base
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errMu.Lock()
					errs = multierr.Append(errs, errFromPanic(base, r))
					errMu.Unlock()
					o.stats.RecordAnomaly()
				}
			}()
			scratch := o.scratchFor(base)
			cycles := finder.Find(snap, base, scratch)
			results <- baseResult{base: base, cycles: cycles}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var allCycles []cycle.Cycle
	for r := range results {
		if len(r.cycles) > 0 {
			o.stats.RecordCyclesFound(r.base, len(r.cycles))
			allCycles = append(allCycles, r.cycles...)
		}
	}

	if errs != nil {
		o.log.Warn("per-base scan reported anomalies", zap.Error(errs))
	}

	now := start
	for _, c := range allCycles {
		select {
		case <-ctx.Done():
			return
		default:
		}
		rec, ok := o.eval.Evaluate(c, cfg.anchors, now)
		if !ok {
			continue
		}
		o.publish(rec)
	}

	latencyMs := float64(o.clock.Now().Sub(start)) / float64(time.Millisecond)
	o.stats.RecordPass(latencyMs)
}

// publish sends rec downstream, dropping and counting rather than blocking
// the detection loop if the outbound channel is not draining.
func (o *DetectionOrchestrator) publish(rec evaluator.OpportunityRecord) {
	select {
	case o.out <- rec:
		o.stats.RecordOpportunityEmitted()
	default:
		o.stats.RecordDropped()
	}
}

// scratchFor returns the reusable cycle.Scratch for base, allocating one on
// first use. One Scratch per base token, not per pass, so the hot path
// stays allocation-free across passes.
func (o *DetectionOrchestrator) scratchFor(base token.ID) *cycle.Scratch {
	o.scratchMu.Lock()
	defer o.scratchMu.Unlock()
	s, ok := o.scratch[base]
	if !ok {
		s = cycle.NewScratch()
		o.scratch[base] = s
	}
	return s
}

// MetricsSnapshot returns the current Prometheus text exposition of this
// orchestrator's counters and gauges.
func (o *DetectionOrchestrator) MetricsSnapshot() string {
	return o.stats.Snapshot()
}

func errFromPanic(base token.ID, r interface{}) error {
	return &scanPanicError{base: base, value: r}
}

type scanPanicError struct {
	base  token.ID
	value interface{}
}

func (e *scanPanicError) Error() string {
	return "orchestrator: scan for base token " + e.base.String() + " panicked: " + errValueString(e.value)
}

func errValueString(v interface{}) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "non-string panic value"
}
