// Package cycle implements the Bellman-Ford-based CycleFinder: a pure
// algorithm over a read-only ArbitrageGraph snapshot that discovers closed
// paths whose product of fee-adjusted rates clears a configured profit
// threshold.
package cycle

import (
	"math"
	"sort"
	"strings"

	"solana-arbitrage-core/graph"
	"solana-arbitrage-core/token"
)

// Cycle is a closed sequence of tokens [t0, t1, ..., tn, t0] with the edge
// chosen at each hop.
type Cycle struct {
	Tokens []token.ID
	Edges  []graph.ExchangeEdge
}

// Hops returns the number of edge traversals in the cycle.
func (c Cycle) Hops() int {
	return len(c.Edges)
}

// WeightSum sums the cached per-edge weights precisely: it never
// re-multiplies rates, only adds the already-cached InverseLogWeight
// values, so it agrees with the graph's own bookkeeping to float64
// precision.
func (c Cycle) WeightSum() float64 {
	var sum float64
	for _, e := range c.Edges {
		sum += e.InverseLogWeight
	}
	return sum
}

// ProfitBps returns the estimated pre-slippage profit in basis points:
// (exp(-weightSum) - 1) * 10000.
func (c Cycle) ProfitBps() float64 {
	return (math.Exp(-c.WeightSum()) - 1) * 10000
}

// Canonical rotates the cycle so its lexicographically smallest token sits
// at index 0, the unique representative used to dedupe cycles discovered
// from different start tokens within one detection pass.
func (c Cycle) Canonical() Cycle {
	n := len(c.Edges)
	if n == 0 {
		return c
	}
	// Tokens has n+1 entries (closing repeat); only the first n are
	// distinct rotation points.
	minIdx := 0
	for i := 1; i < n; i++ {
		if c.Tokens[i].Less(c.Tokens[minIdx]) {
			minIdx = i
		}
	}
	if minIdx == 0 {
		return c
	}
	tokens := make([]token.ID, n+1)
	edges := make([]graph.ExchangeEdge, n)
	for i := 0; i < n; i++ {
		tokens[i] = c.Tokens[(minIdx+i)%n]
		edges[i] = c.Edges[(minIdx+i)%n]
	}
	tokens[n] = tokens[0]
	return Cycle{Tokens: tokens, Edges: edges}
}

// Key returns the canonical dedup key for this cycle. Callers should call
// Canonical first; Key does not rotate on its own.
func (c Cycle) Key() string {
	var b strings.Builder
	for i, t := range c.Tokens {
		if i > 0 {
			b.WriteByte('>')
		}
		b.WriteString(t.String())
	}
	for _, e := range c.Edges {
		b.WriteByte('|')
		b.WriteString(e.Pool.String())
	}
	return b.String()
}

// SortByProfitDesc sorts cycles by descending ProfitBps, a convenience for
// deterministic test output and for the evaluator's intake order.
func SortByProfitDesc(cycles []Cycle) {
	sort.SliceStable(cycles, func(i, j int) bool {
		return cycles[i].ProfitBps() > cycles[j].ProfitBps()
	})
}
