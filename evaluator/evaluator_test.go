package evaluator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solana-arbitrage-core/cycle"
	"solana-arbitrage-core/graph"
	"solana-arbitrage-core/token"
)

func mustID(t *testing.T, b58 string) token.ID {
	t.Helper()
	id, err := token.IDFromBase58(b58)
	require.NoError(t, err)
	return id
}

func mustPool(t *testing.T, b58 string) token.PoolID {
	t.Helper()
	p, err := token.PoolIDFromBase58(b58)
	require.NoError(t, err)
	return p
}

func mustEdge(t *testing.T, from, to token.ID, pool token.PoolID, rate float64, hint []graph.LiquidityTier) graph.ExchangeEdge {
	t.Helper()
	e, err := graph.NewExchangeEdge(from, to, token.AmmV4, pool, rate, 25, hint)
	require.NoError(t, err)
	return e
}

func defaultAnchors() Anchors {
	return Anchors{
		MaxSlippageBps:       100,
		BaseInputNotional:    1_000_000,
		MinProfitBps:         10,
		ProfitScoreAnchorBps: 100,
		DeepLiquidityAnchor:  10_000_000,
	}
}

func TestEvaluateAcceptsProfitableCycleWithDeepLiquidity(t *testing.T) {
	a := mustID(t, "So11111111111111111111111111111111111111112")
	b := mustID(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	pool := mustPool(t, "8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj")

	hint := []graph.LiquidityTier{{TierPrice: 1.0, TierSize: 1_000_000_000}}
	ab := mustEdge(t, a, b, pool, 2.0, hint)
	ba := mustEdge(t, b, a, pool, 1.0, hint)

	c := cycle.Cycle{Tokens: []token.ID{a, b, a}, Edges: []graph.ExchangeEdge{ab, ba}}

	e := Evaluator{}
	rec, ok := e.Evaluate(c, defaultAnchors(), time.Unix(0, 0))
	require.True(t, ok)
	require.Greater(t, rec.ExpectedProfitBps, 0.0)
	require.False(t, rec.ID.String() == "")
}

func TestEvaluateRejectsBelowMinProfitBps(t *testing.T) {
	a := mustID(t, "So11111111111111111111111111111111111111112")
	b := mustID(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	pool := mustPool(t, "8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj")

	hint := []graph.LiquidityTier{{TierPrice: 1.0, TierSize: 1_000_000_000}}
	ab := mustEdge(t, a, b, pool, 1.001, hint)
	ba := mustEdge(t, b, a, pool, 1.0, hint)

	c := cycle.Cycle{Tokens: []token.ID{a, b, a}, Edges: []graph.ExchangeEdge{ab, ba}}

	anchors := defaultAnchors()
	anchors.MinProfitBps = 10000 // unreachable threshold
	e := Evaluator{}
	_, ok := e.Evaluate(c, anchors, time.Unix(0, 0))
	require.False(t, ok)
}

func TestEvaluateClassifiesLowRiskForReliableShortDeepCycle(t *testing.T) {
	a := mustID(t, "So11111111111111111111111111111111111111112")
	b := mustID(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	pool := mustPool(t, "8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj")

	hint := []graph.LiquidityTier{{TierPrice: 1.0, TierSize: 1_000_000_000_000}}
	ab := mustEdge(t, a, b, pool, 1.05, hint)
	ba := mustEdge(t, b, a, pool, 1.0, hint)

	c := cycle.Cycle{Tokens: []token.ID{a, b, a}, Edges: []graph.ExchangeEdge{ab, ba}}

	anchors := defaultAnchors()
	anchors.MinProfitBps = 1
	anchors.DeepLiquidityAnchor = 1_000_000
	e := Evaluator{}
	rec, ok := e.Evaluate(c, anchors, time.Unix(0, 0))
	require.True(t, ok)
	require.Equal(t, RiskLow, rec.RiskClass)
}

func TestEvaluateClassifiesHighRiskForUnreliableDex(t *testing.T) {
	a := mustID(t, "So11111111111111111111111111111111111111112")
	b := mustID(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	pool := mustPool(t, "8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj")

	hint := []graph.LiquidityTier{{TierPrice: 1.0, TierSize: 1_000_000_000}}
	ab := mustEdge(t, a, b, pool, 1.05, hint)
	ba := mustEdge(t, b, a, pool, 1.0, hint)
	c := cycle.Cycle{Tokens: []token.ID{a, b, a}, Edges: []graph.ExchangeEdge{ab, ba}}

	anchors := defaultAnchors()
	anchors.MinProfitBps = 1
	anchors.DexReliability = map[token.DexTag]float64{token.AmmV4: 0.5}
	e := Evaluator{}
	rec, ok := e.Evaluate(c, anchors, time.Unix(0, 0))
	require.True(t, ok)
	require.Equal(t, RiskHigh, rec.RiskClass)
}

func TestEvaluateFallsBackToBaseInputNotionalWithoutLiquidityHint(t *testing.T) {
	a := mustID(t, "So11111111111111111111111111111111111111112")
	b := mustID(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	pool := mustPool(t, "8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj")

	ab := mustEdge(t, a, b, pool, 2.0, nil)
	ba := mustEdge(t, b, a, pool, 1.0, nil)
	c := cycle.Cycle{Tokens: []token.ID{a, b, a}, Edges: []graph.ExchangeEdge{ab, ba}}

	anchors := defaultAnchors()
	e := Evaluator{}
	rec, ok := e.Evaluate(c, anchors, time.Unix(0, 0))
	require.True(t, ok)
	require.Equal(t, float64(anchors.BaseInputNotional), rec.OptimalInput.InexactFloat64())
}

func TestRiskClassString(t *testing.T) {
	require.Equal(t, "low", RiskLow.String())
	require.Equal(t, "medium", RiskMedium.String())
	require.Equal(t, "high", RiskHigh.String())
}
