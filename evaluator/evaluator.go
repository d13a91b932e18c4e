// Package evaluator turns a raw profitable Cycle into a sized, scored
// OpportunityRecord: it picks an input size bounded by liquidity hints,
// applies a conservative constant-product slippage model, re-verifies
// post-slippage profitability, and assigns a priority score and risk
// class. The evaluator performs no I/O and is deterministic given
// identical inputs and anchor constants.
package evaluator

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"solana-arbitrage-core/cycle"
	"solana-arbitrage-core/graph"
	"solana-arbitrage-core/token"
)

// RiskClass classifies an opportunity's execution risk.
type RiskClass uint8

const (
	RiskLow RiskClass = iota
	RiskMedium
	RiskHigh
)

func (r RiskClass) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	default:
		return "high"
	}
}

// OpportunityRecord is the fully-evaluated, post-slippage opportunity
// handed to the outbound channel.
type OpportunityRecord struct {
	ID     uuid.UUID
	Cycle  cycle.Cycle

	OptimalInput      decimal.Decimal
	ExpectedOutput    decimal.Decimal
	ExpectedProfitAbs decimal.Decimal
	ExpectedProfitBps float64

	PriorityScore float64
	RiskClass     RiskClass

	DetectedAtEpochMs int64
}

// Anchors holds the normalization constants used by the priority score and
// risk classifier. All fields are hot-reloadable via Config in the
// orchestrator package.
type Anchors struct {
	// MaxSlippageBps bounds the cumulative per-hop slippage allowed while
	// sizing the input.
	MaxSlippageBps float64
	// BaseInputNotional is the starting point for input sizing, in the
	// start token's smallest unit, before the liquidity-hint walk trims it
	// down; also the fallback when no hint is present at all.
	BaseInputNotional uint64
	// MinProfitBps is the same post-slippage threshold CycleFinder applies
	// pre-slippage; the evaluator re-verifies against it.
	MinProfitBps float64
	// ProfitScoreAnchorBps is the "excellent profit" anchor for the
	// priority score's profit component.
	ProfitScoreAnchorBps float64
	// DeepLiquidityAnchor is the "deep liquidity" anchor for the priority
	// score's liquidity component and the Low risk class's floor.
	DeepLiquidityAnchor uint64
	// DexReliability overrides token.DexTag.DefaultReliability() per tag.
	DexReliability map[token.DexTag]float64
}

func (a Anchors) reliability(d token.DexTag) float64 {
	if a.DexReliability != nil {
		if v, ok := a.DexReliability[d]; ok {
			return v
		}
	}
	return d.DefaultReliability()
}

// Evaluator is a pure, stateless function object; it carries no mutable
// state and is safe to call concurrently from many goroutines.
type Evaluator struct{}

// Evaluate sizes, slippage-adjusts and scores one cycle. It returns
// (_, false) if the post-slippage profit falls below anchors.MinProfitBps.
func (Evaluator) Evaluate(c cycle.Cycle, anchors Anchors, now time.Time) (OpportunityRecord, bool) {
	input := sizeInput(c, anchors)
	if input <= 0 {
		return OpportunityRecord{}, false
	}

	output, slippageBps := applySlippage(c, input)
	profitAbs := output - input
	profitBps := 0.0
	if input > 0 {
		profitBps = profitAbs / input * 10000
	}
	_ = slippageBps

	if profitBps < anchors.MinProfitBps {
		return OpportunityRecord{}, false
	}

	minHopLiquidity := minHopLiquidity(c)
	score := priorityScore(c, profitBps, minHopLiquidity, anchors)
	risk := classifyRisk(c, profitBps, minHopLiquidity, anchors)

	rec := OpportunityRecord{
		ID:                uuid.New(),
		Cycle:             c,
		OptimalInput:      decimal.NewFromFloat(input),
		ExpectedOutput:    decimal.NewFromFloat(output),
		ExpectedProfitAbs: decimal.NewFromFloat(profitAbs),
		ExpectedProfitBps: profitBps,
		PriorityScore:     score,
		RiskClass:         risk,
		DetectedAtEpochMs: now.UnixMilli(),
	}
	return rec, true
}

// sizeInput starts from anchors.BaseInputNotional and walks the cycle
// consulting each hop's liquidity hint, lowering the amount to each hinted
// hop's capacity cap where that is smaller. Hops without a hint do not
// constrain it, so a cycle with no hints anywhere is sized at
// anchors.BaseInputNotional. The result is not checked against the
// slippage estimate: the slippage that applySlippage reports for it may
// exceed anchors.MaxSlippageBps.
func sizeInput(c cycle.Cycle, anchors Anchors) float64 {
	candidate := float64(anchors.BaseInputNotional)
	for _, e := range c.Edges {
		if len(e.LiquidityHint) == 0 {
			continue
		}
		tierCap := 0.0
		for _, t := range e.LiquidityHint {
			tierCap += float64(t.TierSize)
		}
		// Capacity cap per hinted hop: the ladder's total size times
		// (MaxSlippageBps/10000 + 0.5), compared directly with the
		// start-token amount; no iterative search is made.
		tierCapacity := tierCap * (anchors.MaxSlippageBps / 10000 + 0.5)
		if tierCapacity < candidate {
			candidate = tierCapacity
		}
	}
	if candidate <= 0 {
		return float64(anchors.BaseInputNotional)
	}
	return candidate
}

// applySlippage runs the constant-product approximation per hop: output =
// reserveOut * x / (reserveIn + x), adjusted by (1 - fee_bps/10000), tiers
// applied greedily; absent a hint, the hop's mid-rate is used unadjusted
// (full liquidity assumed, the conservative default already baked into
// sizeInput's fallback cap). It returns the final output amount and the
// aggregate slippage in bps relative to the mid-rate product.
func applySlippage(c cycle.Cycle, input float64) (output float64, slippageBps float64) {
	amount := input
	midRateProduct := 1.0
	for _, e := range c.Edges {
		midRateProduct *= e.Rate * (1 - float64(e.FeeBps)/10000)
		amount = hopOutput(e, amount)
	}
	effectiveRate := 1.0
	if input > 0 {
		effectiveRate = amount / input
	}
	if midRateProduct > 0 {
		slippageBps = 10000 * (midRateProduct - effectiveRate) / midRateProduct
	}
	return amount, slippageBps
}

// hopOutput applies one hop's slippage model, greedily walking the
// liquidity ladder tiers in order and falling back to the flat mid-rate
// once the ladder is exhausted or absent.
func hopOutput(e graph.ExchangeEdge, input float64) float64 {
	feeFactor := 1 - float64(e.FeeBps)/10000
	if len(e.LiquidityHint) == 0 {
		return input * e.Rate * feeFactor
	}

	remaining := input
	out := 0.0
	for _, tier := range e.LiquidityHint {
		if remaining <= 0 {
			break
		}
		reserveIn := float64(tier.TierSize)
		reserveOut := reserveIn * tier.TierPrice * e.Rate
		take := remaining
		if take > reserveIn {
			take = reserveIn
		}
		out += (reserveOut * take / (reserveIn + take)) * feeFactor
		remaining -= take
	}
	if remaining > 0 {
		// Ran past every tier in the ladder: apply the mid-rate to the
		// remainder as a conservative (likely pessimistic at this size)
		// fallback rather than rejecting the whole hop.
		out += remaining * e.Rate * feeFactor
	}
	return out
}

func minHopLiquidity(c cycle.Cycle) uint64 {
	var min uint64
	first := true
	for _, e := range c.Edges {
		hopTotal := uint64(0)
		for _, t := range e.LiquidityHint {
			hopTotal += t.TierSize
		}
		if first || hopTotal < min {
			min = hopTotal
			first = false
		}
	}
	return min
}

func priorityScore(c cycle.Cycle, profitBps float64, minLiquidity uint64, anchors Anchors) float64 {
	profitComponent := clamp01(profitBps / max1(anchors.ProfitScoreAnchorBps))

	hops := c.Hops()
	pathComponent := 1.0 - float64(hops-2)*0.2
	if pathComponent < 0 {
		pathComponent = 0
	}

	liquidityComponent := clamp01(float64(minLiquidity) / max1(float64(anchors.DeepLiquidityAnchor)))

	reliabilitySum := 0.0
	for _, e := range c.Edges {
		reliabilitySum += anchors.reliability(e.Dex)
	}
	reliabilityComponent := 0.0
	if hops > 0 {
		reliabilityComponent = reliabilitySum / float64(hops)
	}

	score := 0.4*profitComponent + 0.3*pathComponent + 0.2*liquidityComponent + 0.1*reliabilityComponent
	return clamp01(score)
}

func classifyRisk(c cycle.Cycle, profitBps float64, minLiquidity uint64, anchors Anchors) RiskClass {
	hops := c.Hops()
	for _, e := range c.Edges {
		if anchors.reliability(e.Dex) < 0.75 {
			return RiskHigh
		}
	}

	switch {
	case hops <= 3 && profitBps >= 200 && float64(minLiquidity) >= float64(anchors.DeepLiquidityAnchor):
		return RiskLow
	case hops <= 3 && profitBps >= 50:
		return RiskMedium
	case hops == 4 && profitBps >= 100:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func max1(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}
