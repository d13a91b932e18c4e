// Package graph maintains the live directed multigraph of inter-token
// exchange edges: ExchangeEdge values and the ArbitrageGraph adjacency
// structure that indexes and guards them.
package graph

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"solana-arbitrage-core/token"
)

// ErrInvalidEdge is returned when an edge's fields violate the edge
// construction contract (from == to, rate <= 0, fee_bps >= 10000).
var ErrInvalidEdge = errors.New("graph: invalid edge")

// ErrUnknownEdge is returned when a rate-update or removal references an
// edge not currently indexed in the graph.
var ErrUnknownEdge = errors.New("graph: unknown edge")

const maxFeeBps = 10000

// feeLnCache caches ln(1 - fee_bps/10000) for the fee tiers most commonly
// seen across the modeled AMM families, since ln sits on the hot path of
// every edge construction and rate refresh.
var feeLnCache sync.Map // uint16 -> float64

func init() {
	for _, bps := range [...]uint16{5, 20, 25, 30, 100, 300} {
		feeLnCache.Store(bps, math.Log(1-float64(bps)/10000))
	}
}

func lnOneMinusFee(feeBps uint16) float64 {
	if v, ok := feeLnCache.Load(feeBps); ok {
		return v.(float64)
	}
	v := math.Log(1 - float64(feeBps)/10000)
	feeLnCache.Store(feeBps, v)
	return v
}

// LiquidityTier approximates one rung of a pool's depth ladder.
type LiquidityTier struct {
	// TierPrice scales the edge's mid Rate for this tier (1.0 = at the mid
	// rate).
	TierPrice float64
	TierSize  uint64
}

// ExchangeEdge is one directional trade edge between two tokens through a
// specific pool on a specific DEX. It is immutable after construction
// except for the rate/fee refresh performed by ArbitrageGraph.UpdateRate.
type ExchangeEdge struct {
	From token.ID
	To   token.ID
	Dex  token.DexTag
	Pool token.PoolID

	Rate   float64
	FeeBps uint16

	// InverseLogWeight caches -ln(rate * (1 - fee_bps/10000)). It is +Inf
	// when the edge is effectively dead (rate <= 0).
	InverseLogWeight float64

	// LiquidityHint is a small depth ladder, k <= 3. Nil means "use the
	// evaluator's conservative default".
	LiquidityHint []LiquidityTier
}

// NewExchangeEdge constructs an edge, computing InverseLogWeight from rate
// and feeBps. It returns ErrInvalidEdge for from==to, rate<=0 or
// feeBps>=10000.
func NewExchangeEdge(from, to token.ID, dex token.DexTag, pool token.PoolID, rate float64, feeBps uint16, hint []LiquidityTier) (ExchangeEdge, error) {
	if from == to {
		return ExchangeEdge{}, fmt.Errorf("%w: from and to are the same token %s", ErrInvalidEdge, from)
	}
	if rate <= 0 {
		return ExchangeEdge{}, fmt.Errorf("%w: rate %v is not strictly positive", ErrInvalidEdge, rate)
	}
	if feeBps >= maxFeeBps {
		return ExchangeEdge{}, fmt.Errorf("%w: fee_bps %d >= %d", ErrInvalidEdge, feeBps, maxFeeBps)
	}
	e := ExchangeEdge{
		From:          from,
		To:            to,
		Dex:           dex,
		Pool:          pool,
		Rate:          rate,
		FeeBps:        feeBps,
		LiquidityHint: hint,
	}
	e.InverseLogWeight = weightOf(rate, feeBps)
	return e, nil
}

// weightOf computes -ln(rate * (1 - fee_bps/10000)), returning +Inf for a
// non-positive or non-finite rate so the edge is never relaxed into.
func weightOf(rate float64, feeBps uint16) float64 {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return math.Inf(1)
	}
	effective := rate * math.Exp(lnOneMinusFee(feeBps))
	if effective <= 0 {
		return math.Inf(1)
	}
	w := -math.Log(effective)
	if math.IsNaN(w) {
		return math.Inf(1)
	}
	return w
}

// refresh recomputes Rate, FeeBps and InverseLogWeight in place. Setting
// rate to its current value (and feeBps unchanged) is idempotent: it leaves
// InverseLogWeight bit-for-bit identical.
func (e *ExchangeEdge) refresh(newRate float64, newFeeBps *uint16) {
	e.Rate = newRate
	if newFeeBps != nil {
		e.FeeBps = *newFeeBps
	}
	e.InverseLogWeight = weightOf(e.Rate, e.FeeBps)
}

// key identifies an edge's (from,to,dex,pool) tuple, the basis of the
// "exactly one edge per tuple" invariant and edge_index lookups.
type key struct {
	from token.ID
	to   token.ID
	dex  token.DexTag
	pool token.PoolID
}

func keyOf(from, to token.ID, dex token.DexTag, pool token.PoolID) key {
	return key{from: from, to: to, dex: dex, pool: pool}
}
