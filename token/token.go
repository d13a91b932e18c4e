// Package token defines the node and edge-family identity types shared by
// the graph, cycle, evaluator and orchestrator packages.
package token

import (
	"bytes"

	"github.com/gagliardetto/solana-go"
)

// ID identifies a token mint. It is byte-exact comparable and usable as a
// map key, the same way solana.PublicKey already is.
type ID solana.PublicKey

// PoolID identifies a specific pool instance belonging to some DexTag.
type PoolID solana.PublicKey

// String renders the base58 form, matching solana.PublicKey's own encoding.
func (id ID) String() string {
	return solana.PublicKey(id).String()
}

// String renders the base58 form, matching solana.PublicKey's own encoding.
func (p PoolID) String() string {
	return solana.PublicKey(p).String()
}

// Less implements the byte-compare ordering used for cycle canonicalization:
// rotate a cycle so its lexicographically smallest token sits at index 0.
func (id ID) Less(other ID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// IDFromBase58 parses a base58-encoded mint address into an ID.
func IDFromBase58(s string) (ID, error) {
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return ID{}, err
	}
	return ID(pk), nil
}

// PoolIDFromBase58 parses a base58-encoded pool address into a PoolID.
func PoolIDFromBase58(s string) (PoolID, error) {
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return PoolID{}, err
	}
	return PoolID(pk), nil
}

// DexTag labels the AMM family that produced a pool, used for the
// reliability weight consulted by the evaluator. It carries no default fee;
// every edge supplies its own FeeBps.
type DexTag uint8

const (
	// AmmV4 is a classic constant-product AMM (e.g. Raydium's AMM v4).
	AmmV4 DexTag = iota
	// ConcentratedLiquidity is a tick-based concentrated-liquidity AMM (e.g. Whirlpool).
	ConcentratedLiquidity
	// DynamicBins is a bin/ladder-based AMM (e.g. Meteora DLMM).
	DynamicBins
	// BondingCurve is a single-sided bonding-curve launch AMM.
	BondingCurve
	// ConstantProduct2 is a second-generation constant-product AMM with
	// different default fee tiers than AmmV4.
	ConstantProduct2
)

// String renders a human-readable DEX family name for logs and metrics labels.
func (d DexTag) String() string {
	switch d {
	case AmmV4:
		return "amm_v4"
	case ConcentratedLiquidity:
		return "concentrated_liquidity"
	case DynamicBins:
		return "dynamic_bins"
	case BondingCurve:
		return "bonding_curve"
	case ConstantProduct2:
		return "constant_product_2"
	default:
		return "unknown"
	}
}

// DefaultReliability returns the reference reliability weight used by the
// evaluator's DEX-reliability scoring component when the orchestrator's
// configuration does not override it.
func (d DexTag) DefaultReliability() float64 {
	switch d {
	case AmmV4, ConcentratedLiquidity:
		return 1.0
	case ConstantProduct2:
		return 0.9
	case DynamicBins:
		return 0.8
	case BondingCurve:
		return 0.7
	default:
		return 0.7
	}
}
