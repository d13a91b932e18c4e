package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"solana-arbitrage-core/token"
)

func TestWeightOfReturnsInfForNonPositiveOrNonFiniteRate(t *testing.T) {
	require.True(t, math.IsInf(weightOf(0, 25), 1))
	require.True(t, math.IsInf(weightOf(-5, 25), 1))
	require.True(t, math.IsInf(weightOf(math.NaN(), 25), 1))
	require.True(t, math.IsInf(weightOf(math.Inf(1), 25), 1))
}

func TestWeightOfIsFiniteForAProfitableRate(t *testing.T) {
	w := weightOf(1.01, 25)
	require.False(t, math.IsInf(w, 0))
	require.False(t, math.IsNaN(w))
	// A rate > 1, fee-adjusted, should still log out as slightly negative
	// (profitable direction) for small fees.
	require.Less(t, w, 0.0)
}

func TestRefreshWithSameRateIsBitForBitIdempotent(t *testing.T) {
	sol, err := token.IDFromBase58("So11111111111111111111111111111111111111112")
	require.NoError(t, err)
	usdc, err := token.IDFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	require.NoError(t, err)
	pool, err := token.PoolIDFromBase58("8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj")
	require.NoError(t, err)

	e, err := NewExchangeEdge(sol, usdc, token.AmmV4, pool, 150.25, 25, nil)
	require.NoError(t, err)

	before := e.InverseLogWeight
	e.refresh(150.25, nil)
	require.Equal(t, before, e.InverseLogWeight)
}

func TestNewExchangeEdgeRejectsSameFromTo(t *testing.T) {
	sol, err := token.IDFromBase58("So11111111111111111111111111111111111111112")
	require.NoError(t, err)
	pool, err := token.PoolIDFromBase58("8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj")
	require.NoError(t, err)

	_, err = NewExchangeEdge(sol, sol, token.AmmV4, pool, 1.0, 25, nil)
	require.ErrorIs(t, err, ErrInvalidEdge)
}
