package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

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

func testTokens(t *testing.T) (sol, usdc token.ID, pool token.PoolID) {
	t.Helper()
	sol = mustID(t, "So11111111111111111111111111111111111111112")
	usdc = mustID(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	pool = mustPool(t, "8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj")
	return
}

func TestAddOrReplaceEdgeRejectsInvalidFields(t *testing.T) {
	sol, usdc, pool := testTokens(t)
	g := New()

	require.ErrorIs(t, g.AddOrReplaceEdge(sol, sol, token.AmmV4, pool, 1.0, 25, nil), ErrInvalidEdge)
	require.ErrorIs(t, g.AddOrReplaceEdge(sol, usdc, token.AmmV4, pool, 0, 25, nil), ErrInvalidEdge)
	require.ErrorIs(t, g.AddOrReplaceEdge(sol, usdc, token.AmmV4, pool, 1.0, 10000, nil), ErrInvalidEdge)
}

func TestAddOrReplaceEdgeReplacesInPlaceOnSameTuple(t *testing.T) {
	sol, usdc, pool := testTokens(t)
	g := New()

	require.NoError(t, g.AddOrReplaceEdge(sol, usdc, token.AmmV4, pool, 150.0, 25, nil))
	require.NoError(t, g.AddOrReplaceEdge(sol, usdc, token.AmmV4, pool, 160.0, 25, nil))

	require.Equal(t, 2, g.NodeCount())
	require.Equal(t, 1, g.EdgeCount())

	snap := g.RLock()
	defer snap.Release()
	edges := snap.OutEdges(sol)
	require.Len(t, edges, 1)
	require.Equal(t, 160.0, edges[0].Rate)
}

func TestUpdateRateOnUnknownEdgeReturnsErrUnknownEdge(t *testing.T) {
	sol, usdc, pool := testTokens(t)
	g := New()
	err := g.UpdateRate(sol, usdc, token.AmmV4, pool, 100, nil)
	require.True(t, errors.Is(err, ErrUnknownEdge))
}

func TestUpdateRateRefreshesWeight(t *testing.T) {
	sol, usdc, pool := testTokens(t)
	g := New()
	require.NoError(t, g.AddOrReplaceEdge(sol, usdc, token.AmmV4, pool, 100.0, 25, nil))

	snap := g.RLock()
	before := snap.OutEdges(sol)[0].InverseLogWeight
	snap.Release()

	require.NoError(t, g.UpdateRate(sol, usdc, token.AmmV4, pool, 200.0, nil))

	snap = g.RLock()
	after := snap.OutEdges(sol)[0].InverseLogWeight
	snap.Release()

	require.NotEqual(t, before, after)
}

func TestRemoveEdgePrunesOrphanNodes(t *testing.T) {
	sol, usdc, pool := testTokens(t)
	g := New()
	require.NoError(t, g.AddOrReplaceEdge(sol, usdc, token.AmmV4, pool, 100.0, 25, nil))
	require.Equal(t, 2, g.NodeCount())

	require.NoError(t, g.RemoveEdge(sol, usdc, token.AmmV4, pool))
	require.Equal(t, 0, g.NodeCount())
	require.Equal(t, 0, g.EdgeCount())
}

func TestRemoveEdgeKeepsNodeAliveWhileOtherEdgesReferenceIt(t *testing.T) {
	sol, usdc, pool := testTokens(t)
	other := mustID(t, "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN")
	g := New()

	require.NoError(t, g.AddOrReplaceEdge(sol, usdc, token.AmmV4, pool, 100.0, 25, nil))
	require.NoError(t, g.AddOrReplaceEdge(other, usdc, token.AmmV4, pool, 50.0, 25, nil))

	require.NoError(t, g.RemoveEdge(sol, usdc, token.AmmV4, pool))
	require.True(t, g.NodeCount() >= 1)

	snap := g.RLock()
	defer snap.Release()
	require.True(t, snap.Nodes().Contains(usdc))
}

func TestClearEmptiesGraph(t *testing.T) {
	sol, usdc, pool := testTokens(t)
	g := New()
	require.NoError(t, g.AddOrReplaceEdge(sol, usdc, token.AmmV4, pool, 100.0, 25, nil))
	g.Clear()
	require.Equal(t, 0, g.NodeCount())
	require.Equal(t, 0, g.EdgeCount())
}

func TestRemoveEdgeUnknownTupleReturnsError(t *testing.T) {
	sol, usdc, pool := testTokens(t)
	g := New()
	err := g.RemoveEdge(sol, usdc, token.AmmV4, pool)
	require.ErrorIs(t, err, ErrUnknownEdge)
}
