package orchestrator

import (
	"sync"

	"solana-arbitrage-core/evaluator"
	"solana-arbitrage-core/token"
)

// Config holds every hot-reloadable tunable the DetectionOrchestrator
// consults. All getters/setters are safe to call from any goroutine; a
// change takes effect no later than the next detection pass, never mid-pass.
type Config struct {
	mu sync.Mutex

	baseTokens map[token.ID]struct{}

	minProfitBps   float64
	maxHops        int
	maxSlippageBps float64

	baseInputNotional    uint64
	profitScoreAnchorBps float64
	deepLiquidityAnchor  uint64
	dexReliability       map[token.DexTag]float64
}

// NewConfig builds a Config seeded with the given base tokens and
// defaults; maxHops is clamped to [2,8].
func NewConfig(baseTokens []token.ID, minProfitBps float64, maxHops int) *Config {
	c := &Config{
		baseTokens:           make(map[token.ID]struct{}, len(baseTokens)),
		minProfitBps:         minProfitBps,
		maxHops:              clampHops(maxHops),
		maxSlippageBps:       50,
		baseInputNotional:    1_000_000_000,
		profitScoreAnchorBps: 100,
		deepLiquidityAnchor:  10_000_000_000,
		dexReliability:       make(map[token.DexTag]float64),
	}
	for _, t := range baseTokens {
		c.baseTokens[t] = struct{}{}
	}
	return c
}

func clampHops(h int) int {
	if h < 2 {
		return 2
	}
	if h > 8 {
		return 8
	}
	return h
}

// AddBaseToken adds t to the scanned base-token set.
func (c *Config) AddBaseToken(t token.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseTokens[t] = struct{}{}
}

// RemoveBaseToken drops t from the scanned base-token set.
func (c *Config) RemoveBaseToken(t token.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.baseTokens, t)
}

// SetMinProfitBps updates the profit-gate threshold CycleFinder and the
// evaluator both re-check against.
func (c *Config) SetMinProfitBps(bps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minProfitBps = bps
}

// SetMaxHops updates the accepted cycle-length ceiling, clamped to [2,8].
func (c *Config) SetMaxHops(hops int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxHops = clampHops(hops)
}

// SetMaxSlippageBps updates the sizing budget the evaluator uses.
func (c *Config) SetMaxSlippageBps(bps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxSlippageBps = bps
}

// SetBaseInputNotional updates the evaluator's fallback sizing input.
func (c *Config) SetBaseInputNotional(notional uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseInputNotional = notional
}

// SetProfitScoreAnchorBps updates the priority score's "excellent profit" anchor.
func (c *Config) SetProfitScoreAnchorBps(bps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profitScoreAnchorBps = bps
}

// SetDeepLiquidityAnchor updates the "deep liquidity" anchor.
func (c *Config) SetDeepLiquidityAnchor(anchor uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deepLiquidityAnchor = anchor
}

// SetDexReliability overrides the reliability weight for one DEX family.
func (c *Config) SetDexReliability(d token.DexTag, weight float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dexReliability == nil {
		c.dexReliability = make(map[token.DexTag]float64)
	}
	c.dexReliability[d] = weight
}

// snapshot returns a point-in-time, independently-usable copy of the fields
// one detection pass needs, so the pass never races a concurrent setter.
func (c *Config) snapshot() configSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	bases := make([]token.ID, 0, len(c.baseTokens))
	for t := range c.baseTokens {
		bases = append(bases, t)
	}
	reliability := make(map[token.DexTag]float64, len(c.dexReliability))
	for k, v := range c.dexReliability {
		reliability[k] = v
	}

	return configSnapshot{
		baseTokens:     bases,
		minProfitBps:   c.minProfitBps,
		maxHops:        c.maxHops,
		maxSlippageBps: c.maxSlippageBps,
		anchors: evaluator.Anchors{
			MaxSlippageBps:       c.maxSlippageBps,
			BaseInputNotional:    c.baseInputNotional,
			MinProfitBps:         c.minProfitBps,
			ProfitScoreAnchorBps: c.profitScoreAnchorBps,
			DeepLiquidityAnchor:  c.deepLiquidityAnchor,
			DexReliability:       reliability,
		},
	}
}

type configSnapshot struct {
	baseTokens     []token.ID
	minProfitBps   float64
	maxHops        int
	maxSlippageBps float64
	anchors        evaluator.Anchors
}
