package graph

import (
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"solana-arbitrage-core/token"
)

// location records where an indexed edge lives inside a node's out-edge
// slice, so UpdateRate and RemoveEdge are O(1) instead of a linear scan.
type location struct {
	node token.ID
	pos  int
}

// ArbitrageGraph is the mutable adjacency structure over ExchangeEdges.
// It supports many concurrent readers or one exclusive writer via its
// sync.RWMutex field. Operations never perform I/O while holding either
// hold.
type ArbitrageGraph struct {
	mu sync.RWMutex

	nodes     mapset.Set[token.ID]
	outEdges  map[token.ID][]ExchangeEdge
	edgeIndex map[key]location
}

// New returns an empty ArbitrageGraph.
func New() *ArbitrageGraph {
	return &ArbitrageGraph{
		nodes:     mapset.NewThreadUnsafeSet[token.ID](),
		outEdges:  make(map[token.ID][]ExchangeEdge),
		edgeIndex: make(map[key]location),
	}
}

// AddOrReplaceEdge inserts a new edge or overwrites an existing one in
// place (same (from,to,dex,pool) tuple), recomputing its weight. It
// returns ErrInvalidEdge for malformed fields.
func (g *ArbitrageGraph) AddOrReplaceEdge(from, to token.ID, dex token.DexTag, pool token.PoolID, rate float64, feeBps uint16, hint []LiquidityTier) error {
	edge, err := NewExchangeEdge(from, to, dex, pool, rate, feeBps, hint)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	k := keyOf(from, to, dex, pool)
	if loc, ok := g.edgeIndex[k]; ok {
		g.outEdges[loc.node][loc.pos] = edge
		return nil
	}

	g.nodes.Add(from)
	g.nodes.Add(to)
	slice := g.outEdges[from]
	slice = append(slice, edge)
	g.outEdges[from] = slice
	g.edgeIndex[k] = location{node: from, pos: len(slice) - 1}
	return nil
}

// UpdateRate refreshes an existing edge's rate (and optionally its fee)
// atomically with respect to any concurrent reader's snapshot. It returns
// ErrUnknownEdge if the tuple is not indexed.
func (g *ArbitrageGraph) UpdateRate(from, to token.ID, dex token.DexTag, pool token.PoolID, newRate float64, newFeeBps *uint16) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := keyOf(from, to, dex, pool)
	loc, ok := g.edgeIndex[k]
	if !ok {
		return fmt.Errorf("%w: (%s,%s,%s,%s)", ErrUnknownEdge, from, to, dex, pool)
	}
	edge := &g.outEdges[loc.node][loc.pos]
	edge.refresh(newRate, newFeeBps)
	return nil
}

// RemoveEdge drops an edge and prunes any node left with no incident
// edges. It returns ErrUnknownEdge if the tuple is not indexed.
func (g *ArbitrageGraph) RemoveEdge(from, to token.ID, dex token.DexTag, pool token.PoolID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := keyOf(from, to, dex, pool)
	loc, ok := g.edgeIndex[k]
	if !ok {
		return fmt.Errorf("%w: (%s,%s,%s,%s)", ErrUnknownEdge, from, to, dex, pool)
	}

	slice := g.outEdges[loc.node]
	last := len(slice) - 1
	removedTo := slice[loc.pos].To

	if loc.pos != last {
		slice[loc.pos] = slice[last]
		movedKey := keyOf(slice[loc.pos].From, slice[loc.pos].To, slice[loc.pos].Dex, slice[loc.pos].Pool)
		g.edgeIndex[movedKey] = location{node: loc.node, pos: loc.pos}
	}
	slice = slice[:last]
	delete(g.edgeIndex, k)

	if len(slice) == 0 {
		delete(g.outEdges, loc.node)
	} else {
		g.outEdges[loc.node] = slice
	}

	g.pruneIfOrphan(loc.node)
	g.pruneIfOrphan(removedTo)
	return nil
}

// pruneIfOrphan removes t from nodes if it no longer appears as the from
// or to of any live edge. Callers must hold the write lock.
func (g *ArbitrageGraph) pruneIfOrphan(t token.ID) {
	if len(g.outEdges[t]) > 0 {
		return
	}
	for _, slice := range g.outEdges {
		for _, e := range slice {
			if e.To == t {
				return
			}
		}
	}
	g.nodes.Remove(t)
}

// Clear empties the graph.
func (g *ArbitrageGraph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = mapset.NewThreadUnsafeSet[token.ID]()
	g.outEdges = make(map[token.ID][]ExchangeEdge)
	g.edgeIndex = make(map[key]location)
}

// Snapshot is a read-hold over the graph, held for the duration of one
// CycleFinder pass so that every cycle considered in that pass agrees with
// a single consistent view of rates and weights (no torn reads).
type Snapshot struct {
	g *ArbitrageGraph
}

// RLock acquires a read-hold and returns a Snapshot view. Callers MUST
// call Release when done; no I/O may be performed while held.
func (g *ArbitrageGraph) RLock() *Snapshot {
	g.mu.RLock()
	return &Snapshot{g: g}
}

// Release drops the read-hold acquired by RLock.
func (s *Snapshot) Release() {
	s.g.mu.RUnlock()
}

// Nodes returns the set of tokens live in this snapshot.
func (s *Snapshot) Nodes() mapset.Set[token.ID] {
	return s.g.nodes.Clone()
}

// NodeCount returns the number of live tokens without cloning the set.
func (s *Snapshot) NodeCount() int {
	return s.g.nodes.Cardinality()
}

// OutEdges returns the out-edge slice for t in insertion order, except that
// AddOrReplaceEdge on an existing tuple overwrites the edge in its current
// slot and RemoveEdge moves the node's last edge into the removed edge's
// slot. The returned slice is a direct (read-only-by-convention) view
// into the graph's storage and is only valid for the lifetime of the
// snapshot's hold.
func (s *Snapshot) OutEdges(t token.ID) []ExchangeEdge {
	return s.g.outEdges[t]
}

// EdgeCount sums the length of every node's out-edge slice; useful for
// metrics and tests, not on any hot path.
func (g *ArbitrageGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, s := range g.outEdges {
		n += len(s)
	}
	return n
}

// NodeCount returns the number of live tokens.
func (g *ArbitrageGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes.Cardinality()
}
