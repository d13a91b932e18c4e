package cycle

import (
	"math"

	"github.com/bits-and-blooms/bitset"

	"solana-arbitrage-core/graph"
	"solana-arbitrage-core/token"
)

// Scratch holds the reusable working buffers for one Bellman-Ford pass:
// dist, pred and the active/next-active dirty sets. Callers allocate one
// Scratch per worker goroutine and reuse it across detection passes so
// these buffers are not reallocated per pass. Find still allocates on every
// call: a clone of the node set, its dedup map, the reconstruction
// buffers and the returned []Cycle.
//
// A dense bitset.BitSet (grounded on the same active/dirty-set idiom used
// by defistate-client-go's Bellman-Ford-like grapher) backs the
// active/next-active sets over the snapshot's token->index mapping.
type Scratch struct {
	tokens []token.ID
	index  map[token.ID]int

	dist      []float64
	predToken []int
	predEdge  []graph.ExchangeEdge

	active     *bitset.BitSet
	nextActive *bitset.BitSet
}

// NewScratch returns an empty, ready-to-reset Scratch.
func NewScratch() *Scratch {
	return &Scratch{index: make(map[token.ID]int)}
}

// reset rebuilds the dense token<->index mapping and resizes the working
// slices/bitsets for the given snapshot's node count. Node iteration order
// is whatever the snapshot's underlying set yields; it only needs to be
// stable for the duration of this one pass, which a single RLock hold
// guarantees.
func (s *Scratch) reset(snap *graph.Snapshot) int {
	nodes := snap.Nodes()
	n := nodes.Cardinality()

	if cap(s.tokens) < n {
		s.tokens = make([]token.ID, 0, n)
	}
	s.tokens = s.tokens[:0]
	for k := range s.index {
		delete(s.index, k)
	}

	nodes.Each(func(t token.ID) bool {
		s.index[t] = len(s.tokens)
		s.tokens = append(s.tokens, t)
		return false
	})

	if cap(s.dist) < n {
		s.dist = make([]float64, n)
		s.predToken = make([]int, n)
		s.predEdge = make([]graph.ExchangeEdge, n)
	} else {
		s.dist = s.dist[:n]
		s.predToken = s.predToken[:n]
		s.predEdge = s.predEdge[:n]
	}
	for i := 0; i < n; i++ {
		s.dist[i] = math.Inf(1)
		s.predToken[i] = -1
	}

	if s.active == nil || s.active.Len() < uint(n) {
		s.active = bitset.New(uint(n))
		s.nextActive = bitset.New(uint(n))
	} else {
		s.active.ClearAll()
		s.nextActive.ClearAll()
	}
	return n
}
