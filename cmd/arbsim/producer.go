package main

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"

	"solana-arbitrage-core/graph"
	"solana-arbitrage-core/orchestrator"
)

// runProducer subscribes to every watched pool account over a Solana
// websocket connection and feeds decoded reserve updates into g, pulsing
// orch after every batch: one subscription goroutine per pool, fanned out
// from a single websocket client.
func runProducer(ctx context.Context, wsURL string, pools []watchedPool, g *graph.ArbitrageGraph, orch *orchestrator.DetectionOrchestrator, log *zap.Logger) error {
	client, err := ws.Connect(ctx, wsURL)
	if err != nil {
		return err
	}
	defer client.Close()

	var wg sync.WaitGroup
	for _, w := range pools {
		pubKey, err := solana.PublicKeyFromBase58(w.PoolAccount)
		if err != nil {
			log.Warn("skipping pool with unparseable account", zap.String("pool", w.PoolAccount), zap.Error(err))
			continue
		}

		wg.Add(1)
		go func(pubKey solana.PublicKey, w watchedPool) {
			defer wg.Done()
			watchPool(ctx, client, pubKey, w, g, orch, log)
		}(pubKey, w)
	}

	wg.Wait()
	return nil
}

func watchPool(ctx context.Context, client *ws.Client, pubKey solana.PublicKey, w watchedPool, g *graph.ArbitrageGraph, orch *orchestrator.DetectionOrchestrator, log *zap.Logger) {
	sub, err := client.AccountSubscribe(pubKey, rpc.CommitmentConfirmed)
	if err != nil {
		log.Warn("failed to subscribe to pool account", zap.String("pool", w.PoolAccount), zap.Error(err))
		return
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-sub.Response():
			if !ok {
				return
			}
			if update.Value.Data == nil {
				continue
			}
			state, err := decodeRaydiumPoolState(update.Value.Data.GetBinary())
			if err != nil {
				log.Warn("failed to decode pool account", zap.String("pool", w.PoolAccount), zap.Error(err))
				continue
			}
			if err := applyPoolUpdate(g, w, state); err != nil {
				log.Warn("failed to apply pool update", zap.String("pool", w.PoolAccount), zap.Error(err))
				continue
			}
			orch.Pulse()
		}
	}
}
