package main

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"solana-arbitrage-core/graph"
	"solana-arbitrage-core/token"
)

func rawPoolState(status, baseReserve, quoteReserve uint64) []byte {
	buf := make([]byte, raydiumPoolStateMinBytes)
	binary.LittleEndian.PutUint64(buf[0:8], status)
	binary.LittleEndian.PutUint64(buf[32:40], baseReserve)
	binary.LittleEndian.PutUint64(buf[40:48], quoteReserve)
	return buf
}

func TestDecodeRaydiumPoolStateRejectsShortData(t *testing.T) {
	_, err := decodeRaydiumPoolState([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestDecodeRaydiumPoolStateParsesReserves(t *testing.T) {
	state, err := decodeRaydiumPoolState(rawPoolState(1, 500_000_000_000, 10_000_000_000))
	require.NoError(t, err)
	require.Equal(t, uint64(500_000_000_000), state.BaseReserve)
	require.Equal(t, uint64(10_000_000_000), state.QuoteReserve)
}

func TestApplyPoolUpdateRejectsZeroReserve(t *testing.T) {
	g := graph.New()
	sol, err := token.IDFromBase58("So11111111111111111111111111111111111111112")
	require.NoError(t, err)
	usdc, err := token.IDFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	require.NoError(t, err)
	pool, err := token.PoolIDFromBase58("8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj")
	require.NoError(t, err)

	w := watchedPool{PoolAccount: "p", PoolID: pool, Dex: token.AmmV4, Base: sol, Quote: usdc, BaseDecimals: 9, QuoteDecimals: 6, FeeBps: 25}
	err = applyPoolUpdate(g, w, &raydiumPoolState{BaseReserve: 0, QuoteReserve: 100})
	require.Error(t, err)
	require.Equal(t, 0, g.EdgeCount())
}

func TestApplyPoolUpdateInsertsBothDirectedEdges(t *testing.T) {
	g := graph.New()
	sol, err := token.IDFromBase58("So11111111111111111111111111111111111111112")
	require.NoError(t, err)
	usdc, err := token.IDFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	require.NoError(t, err)
	pool, err := token.PoolIDFromBase58("8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj")
	require.NoError(t, err)

	w := watchedPool{PoolAccount: "p", PoolID: pool, Dex: token.AmmV4, Base: sol, Quote: usdc, BaseDecimals: 9, QuoteDecimals: 6, FeeBps: 25}
	err = applyPoolUpdate(g, w, &raydiumPoolState{BaseReserve: 500_000_000_000, QuoteReserve: 10_000_000_000})
	require.NoError(t, err)
	require.Equal(t, 2, g.EdgeCount())
}
