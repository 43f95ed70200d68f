package domain

import (
	"fmt"
	"math/big"
)

// PoolID identifies one liquidity pool by its canonically ordered asset pair
// and curve kind. Stable and volatile pools over the same pair are distinct
// pools with distinct pricing parameters.
type PoolID struct {
	AssetA AssetID `json:"assetA"`
	AssetB AssetID `json:"assetB"`
	Stable bool    `json:"stable"`
}

// NewPoolID canonicalizes the pair so that (A,B,s) and (B,A,s) name the same
// pool.
func NewPoolID(a, b AssetID, stable bool) PoolID {
	if b.Less(a) {
		a, b = b, a
	}
	return PoolID{AssetA: a, AssetB: b, Stable: stable}
}

func (p PoolID) String() string {
	kind := "volatile"
	if p.Stable {
		kind = "stable"
	}
	return fmt.Sprintf("%s:%s:%s", p.AssetA, p.AssetB, kind)
}

func (p PoolID) Contains(asset AssetID) bool {
	return p.AssetA == asset || p.AssetB == asset
}

// Other returns the counter-asset of the pair. ok is false when asset is not
// part of the pool.
func (p PoolID) Other(asset AssetID) (AssetID, bool) {
	switch asset {
	case p.AssetA:
		return p.AssetB, true
	case p.AssetB:
		return p.AssetA, true
	default:
		return AssetID{}, false
	}
}

// PoolState is the live reserve state of a pool as of the latest block.
// Reserve0 belongs to ID.AssetA, Reserve1 to ID.AssetB. Amplification is only
// meaningful for stable pools.
type PoolState struct {
	ID            PoolID   `json:"id"`
	Reserve0      *big.Int `json:"reserve0"`
	Reserve1      *big.Int `json:"reserve1"`
	FeeBps        uint16   `json:"feeBps"`
	Amplification uint64   `json:"amplification,omitempty"`
}

// ReservesFor orients the reserves relative to the swap input asset.
func (s *PoolState) ReservesFor(input AssetID) (reserveIn, reserveOut *big.Int, ok bool) {
	switch input {
	case s.ID.AssetA:
		return s.Reserve0, s.Reserve1, true
	case s.ID.AssetB:
		return s.Reserve1, s.Reserve0, true
	default:
		return nil, nil, false
	}
}

// Route is the ordered hop path from input asset to output asset.
type Route []PoolID

// Validate checks asset contiguity: every hop must contain the running asset
// and the walk must terminate at output.
func (r Route) Validate(input, output AssetID) error {
	if len(r) == 0 {
		return fmt.Errorf("%w: empty route", ErrInvalidRoute)
	}
	cur := input
	for i, pool := range r {
		next, ok := pool.Other(cur)
		if !ok {
			return fmt.Errorf("%w: hop %d pool %s does not contain %s", ErrInvalidRoute, i, pool, cur)
		}
		cur = next
	}
	if cur != output {
		return fmt.Errorf("%w: route terminates at %s, want %s", ErrInvalidRoute, cur, output)
	}
	return nil
}

// Assets expands the route into the asset path [input, ..., output].
func (r Route) Assets(input AssetID) ([]AssetID, error) {
	path := make([]AssetID, 0, len(r)+1)
	path = append(path, input)
	cur := input
	for i, pool := range r {
		next, ok := pool.Other(cur)
		if !ok {
			return nil, fmt.Errorf("%w: hop %d pool %s does not contain %s", ErrInvalidRoute, i, pool, cur)
		}
		path = append(path, next)
		cur = next
	}
	return path, nil
}
