// Command arbsim is the peripheral pool-update simulator: it subscribes to
// a handful of well-known Solana AMM pool accounts, feeds decoded reserve
// updates into the core's ArbitrageGraph, and prints whatever
// OpportunityRecords the orchestrator emits. It is peripheral plumbing
// around the detection core, not the core itself.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go/rpc"

	"solana-arbitrage-core/graph"
	"solana-arbitrage-core/internal/obslog"
	"solana-arbitrage-core/metrics"
	"solana-arbitrage-core/orchestrator"
	"solana-arbitrage-core/token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog, err := obslog.New(false)
	if err != nil {
		log.Fatalf("arbsim: failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	pools, err := defaultWatchedPools()
	if err != nil {
		log.Fatalf("arbsim: failed to build default pool set: %v", err)
	}

	g := graph.New()
	cfg := orchestrator.NewConfig(baseTokensOf(pools), 30, 4)
	stats := metrics.NewCollector()
	orch := orchestrator.New(g, cfg, stats, zlog, 256)

	seedGraphFromJupiter(g, pools, zlog)

	go orch.Run(ctx)
	go printOpportunities(orch.Opportunities())

	if err := runProducer(ctx, rpc.MainNetBeta_WS, pools, g, orch, zlog); err != nil {
		log.Fatalf("arbsim: producer exited: %v", err)
	}
}

// defaultWatchedPools returns the hardcoded set of pools this simulator
// watches when no external pool list is configured: a []watchedPool slice
// with explicit decimals and a default fee tier.
func defaultWatchedPools() ([]watchedPool, error) {
	sol, err := token.IDFromBase58("So11111111111111111111111111111111111111112")
	if err != nil {
		return nil, err
	}
	usdc, err := token.IDFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	if err != nil {
		return nil, err
	}
	solUsdcPool, err := token.PoolIDFromBase58("8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj")
	if err != nil {
		return nil, err
	}

	return []watchedPool{
		{
			PoolAccount:   "8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj",
			PoolID:        solUsdcPool,
			Dex:           token.AmmV4,
			Base:          sol,
			Quote:         usdc,
			BaseDecimals:  9,
			QuoteDecimals: 6,
			FeeBps:        25,
		},
	}, nil
}

func baseTokensOf(pools []watchedPool) []token.ID {
	seen := make(map[token.ID]struct{}, len(pools))
	var out []token.ID
	for _, w := range pools {
		if _, ok := seen[w.Base]; !ok {
			seen[w.Base] = struct{}{}
			out = append(out, w.Base)
		}
	}
	return out
}
