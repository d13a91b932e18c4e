package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"solana-arbitrage-core/graph"
	"solana-arbitrage-core/token"
)

// ids is a comma-joined list of base58 mint addresses.
const jupiterQuoteURLFormat = "https://api.jup.ag/price/v2?ids=%s"

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// jupiterPriceQuote is one entry of the Jupiter Price API V2 response body.
type jupiterPriceQuote struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Price string `json:"price"`
}

// fetchJupiterPrices resolves a USD mid price for each requested mint; the
// result is what seedGraphFromJupiter derives the graph's initial edges from.
// It decodes the outer envelope with jsoniter (a drop-in, faster
// encoding/json replacement) and uses jsonparser for a zero-allocation
// peek at the top-level "data" key before committing to a full unmarshal.
func fetchJupiterPrices(ids []string) (map[token.ID]float64, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("arbsim: no mint ids requested")
	}

	joined := ids[0]
	for _, id := range ids[1:] {
		joined += "," + id
	}

	resp, err := http.Get(fmt.Sprintf(jupiterQuoteURLFormat, joined))
	if err != nil {
		return nil, fmt.Errorf("arbsim: jupiter price request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("arbsim: reading jupiter response: %w", err)
	}

	if _, _, _, err := jsonparser.Get(body, "data"); err != nil {
		return nil, fmt.Errorf("arbsim: jupiter response missing \"data\": %w", err)
	}

	var envelope struct {
		Data map[string]jupiterPriceQuote `json:"data"`
	}
	if err := jsonAPI.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("arbsim: decoding jupiter response: %w", err)
	}

	prices := make(map[token.ID]float64, len(envelope.Data))
	for mint, quote := range envelope.Data {
		id, err := token.IDFromBase58(mint)
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(quote.Price, 64)
		if err != nil {
			continue
		}
		prices[id] = price
	}
	return prices, nil
}

// seedGraphFromJupiter resolves a USD mid price for every pool's base and
// quote mint and derives an initial pair of edges from the ratio, so the
// orchestrator has something to scan on startup before the first
// websocket account update arrives. Failures are logged and skipped per
// pool; they never abort startup.
func seedGraphFromJupiter(g *graph.ArbitrageGraph, pools []watchedPool, log *zap.Logger) {
	ids := make([]string, 0, len(pools)*2)
	for _, w := range pools {
		ids = append(ids, w.Base.String(), w.Quote.String())
	}

	prices, err := fetchJupiterPrices(ids)
	if err != nil {
		log.Warn("jupiter seed fetch failed, starting with an empty graph", zap.Error(err))
		return
	}

	for _, w := range pools {
		basePrice, ok1 := prices[w.Base]
		quotePrice, ok2 := prices[w.Quote]
		if !ok1 || !ok2 || quotePrice <= 0 || basePrice <= 0 {
			log.Warn("missing jupiter price for pool, skipping seed", zap.String("pool", w.PoolAccount))
			continue
		}
		forwardRate := basePrice / quotePrice
		reverseRate := quotePrice / basePrice
		if err := g.AddOrReplaceEdge(w.Base, w.Quote, w.Dex, w.PoolID, forwardRate, w.FeeBps, nil); err != nil {
			log.Warn("failed to seed forward edge", zap.String("pool", w.PoolAccount), zap.Error(err))
			continue
		}
		if err := g.AddOrReplaceEdge(w.Quote, w.Base, w.Dex, w.PoolID, reverseRate, w.FeeBps, nil); err != nil {
			log.Warn("failed to seed reverse edge", zap.String("pool", w.PoolAccount), zap.Error(err))
		}
	}
}
