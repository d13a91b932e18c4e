package cycle

import (
	"math"

	"solana-arbitrage-core/graph"
	"solana-arbitrage-core/token"
)

// Finder runs the Bellman-Ford relaxation + negative-cycle reconstruction
// against a single read-only graph snapshot.
type Finder struct {
	// MaxHops caps accepted cycle length, in [2,8].
	MaxHops int
	// MinProfitBps is the inclusive profit threshold (>= comparison).
	MinProfitBps float64
}

// Find returns the distinct, canonicalized, profit-gated cycles reachable
// from start within this snapshot. It never panics on an empty or
// singleton graph or when start is absent from it; it simply returns nil.
func (f *Finder) Find(snap *graph.Snapshot, start token.ID, scratch *Scratch) []Cycle {
	n := scratch.reset(snap)
	if n == 0 {
		return nil
	}
	startIdx, ok := scratch.index[start]
	if !ok {
		return nil
	}

	dist := scratch.dist
	predToken := scratch.predToken
	predEdge := scratch.predEdge
	dist[startIdx] = 0
	scratch.active.Set(uint(startIdx))

	for round := 0; round < n-1; round++ {
		if scratch.active.None() {
			break
		}
		scratch.nextActive.ClearAll()
		for i, e := scratch.active.NextSet(0); e; i, e = scratch.active.NextSet(i + 1) {
			u := scratch.tokens[i]
			uDist := dist[i]
			if math.IsInf(uDist, 1) {
				continue
			}
			for _, edge := range snap.OutEdges(u) {
				w := edge.InverseLogWeight
				if math.IsInf(w, 0) || math.IsNaN(w) {
					continue
				}
				vIdx, ok := scratch.index[edge.To]
				if !ok {
					continue
				}
				nd := uDist + w
				if nd < dist[vIdx] {
					dist[vIdx] = nd
					predToken[vIdx] = int(i)
					predEdge[vIdx] = edge
					scratch.nextActive.Set(vIdx)
				}
			}
		}
		scratch.active, scratch.nextActive = scratch.nextActive, scratch.active
	}

	var out []Cycle
	seen := make(map[string]bool)

	for ui, u := range scratch.tokens {
		uDist := dist[ui]
		if math.IsInf(uDist, 1) {
			continue
		}
		for _, edge := range snap.OutEdges(u) {
			w := edge.InverseLogWeight
			if math.IsInf(w, 0) || math.IsNaN(w) {
				continue
			}
			vIdx, ok := scratch.index[edge.To]
			if !ok {
				continue
			}
			if uDist+w >= dist[vIdx] {
				continue
			}
			predToken[vIdx] = ui
			predEdge[vIdx] = edge
			c, ok := reconstruct(scratch.tokens, predToken, predEdge, vIdx)
			if !ok {
				continue
			}
			if c.Hops() < 2 || c.Hops() > f.MaxHops {
				continue
			}
			canon := c.Canonical()
			key := canon.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			if canon.ProfitBps() < f.MinProfitBps {
				continue
			}
			out = append(out, canon)
		}
	}
	return out
}

// reconstruct walks predToken backward from startIdx, collecting nodes
// until one reappears; the segment between its two occurrences is the raw
// cycle candidate.
func reconstruct(tokens []token.ID, predToken []int, predEdge []graph.ExchangeEdge, startIdx int) (Cycle, bool) {
	visited := make(map[int]int)
	segment := []int{startIdx}
	visited[startIdx] = 0
	current := startIdx

	for step := 0; step <= len(tokens); step++ {
		next := predToken[current]
		if next == -1 {
			return Cycle{}, false
		}
		if j, ok := visited[next]; ok {
			cyclePart := append(append([]int{}, segment[j:]...), next)
			k := len(cyclePart) - 1
			outTokens := make([]token.ID, k+1)
			outEdges := make([]graph.ExchangeEdge, k)
			for i := 0; i <= k; i++ {
				outTokens[i] = tokens[cyclePart[k-i]]
			}
			for i := 0; i < k; i++ {
				outEdges[i] = predEdge[cyclePart[k-1-i]]
			}
			return Cycle{Tokens: outTokens, Edges: outEdges}, true
		}
		visited[next] = len(segment)
		segment = append(segment, next)
		current = next
	}
	return Cycle{}, false
}
