package main

import (
	"encoding/binary"
	"fmt"
	"math"

	"solana-arbitrage-core/graph"
	"solana-arbitrage-core/token"
)

// watchedPool describes one pool account this simulator tracks and the two
// tokens/decimals it trades between.
type watchedPool struct {
	PoolAccount   string
	PoolID        token.PoolID
	Dex           token.DexTag
	Base          token.ID
	Quote         token.ID
	BaseDecimals  uint8
	QuoteDecimals uint8
	FeeBps        uint16
}

// raydiumPoolState is the subset of a Raydium AMM v4 pool account's layout
// this simulator understands: the status word and the base/quote reserve
// fields, little-endian, 8-byte aligned.
type raydiumPoolState struct {
	Status       uint64
	BaseReserve  uint64
	QuoteReserve uint64
}

const raydiumPoolStateMinBytes = 48

// decodeRaydiumPoolState parses a raw account-data blob into the reserve
// fields this simulator needs to compute a forward exchange rate.
func decodeRaydiumPoolState(data []byte) (*raydiumPoolState, error) {
	if len(data) < raydiumPoolStateMinBytes {
		return nil, fmt.Errorf("arbsim: pool account data too short (%d bytes)", len(data))
	}
	return &raydiumPoolState{
		Status:       binary.LittleEndian.Uint64(data[0:8]),
		BaseReserve:  binary.LittleEndian.Uint64(data[32:40]),
		QuoteReserve: binary.LittleEndian.Uint64(data[40:48]),
	}, nil
}

// applyPoolUpdate converts one decoded pool state into the pair of
// base->quote and quote->base ExchangeEdges and pushes both into g; the
// caller pulses the orchestrator afterwards. It is a no-op (with a returned
// error) if either reserve is zero, matching NewExchangeEdge's
// strictly-positive-rate rule.
func applyPoolUpdate(g *graph.ArbitrageGraph, w watchedPool, state *raydiumPoolState) error {
	if state.BaseReserve == 0 || state.QuoteReserve == 0 {
		return fmt.Errorf("arbsim: pool %s has a zero reserve, skipping", w.PoolAccount)
	}

	baseUnits := adjustDecimals(state.BaseReserve, w.BaseDecimals)
	quoteUnits := adjustDecimals(state.QuoteReserve, w.QuoteDecimals)
	if baseUnits <= 0 || quoteUnits <= 0 || math.IsInf(baseUnits, 0) || math.IsInf(quoteUnits, 0) {
		return fmt.Errorf("arbsim: pool %s produced a non-finite reserve ratio", w.PoolAccount)
	}

	forwardRate := quoteUnits / baseUnits
	reverseRate := baseUnits / quoteUnits

	if err := g.AddOrReplaceEdge(w.Base, w.Quote, w.Dex, w.PoolID, forwardRate, w.FeeBps, nil); err != nil {
		return err
	}
	return g.AddOrReplaceEdge(w.Quote, w.Base, w.Dex, w.PoolID, reverseRate, w.FeeBps, nil)
}

func adjustDecimals(reserve uint64, decimals uint8) float64 {
	return float64(reserve) / math.Pow(10, float64(decimals))
}
