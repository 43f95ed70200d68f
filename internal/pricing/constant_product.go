// Package pricing implements pure, side-effect-free AMM arithmetic: constant
// product and amplified stable-swap curves, multi-hop composition, and
// slippage bounds. All monetary math uses arbitrary-precision integers.
package pricing

import (
	"math/big"
	"sync"

	"github.com/meridianswap/preview-engine/internal/domain"
)

// BpsDenominator is the basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10000

// Pre-computed constants (avoid allocation on every call)
var (
	bpsDenom = big.NewInt(BpsDenominator)
	one      = big.NewInt(1)
)

// bigIntPool reuses scratch big.Int values on the quote hot path.
var bigIntPool = sync.Pool{
	New: func() interface{} {
		return new(big.Int)
	},
}

func getBigInt() *big.Int  { return bigIntPool.Get().(*big.Int) }
func putBigInt(v *big.Int) { v.SetInt64(0); bigIntPool.Put(v) }

func positive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}

// AmountOut prices an exact-input swap on a constant-product pool:
//
//	out = floor(in*(1-fee) * reserveOut / (reserveIn + in*(1-fee)))
//
// The fee is deducted from the input leg before the invariant division, and
// the result floors so the quote is never more generous than the chain.
func AmountOut(reserveIn, reserveOut, amountIn *big.Int, feeBps uint16) (*big.Int, error) {
	if !positive(amountIn) {
		return nil, domain.ErrInvalidAmount
	}
	if !positive(reserveIn) || !positive(reserveOut) || feeBps >= BpsDenominator {
		return nil, domain.ErrInsufficientLiquidity
	}

	// Keep everything scaled by 10000 so the fee never needs a lossy
	// intermediate division: effIn = in * (10000 - fee).
	effIn := getBigInt()
	defer putBigInt(effIn)
	effIn.SetInt64(int64(BpsDenominator - feeBps))
	effIn.Mul(effIn, amountIn)

	den := getBigInt()
	defer putBigInt(den)
	den.Mul(reserveIn, bpsDenom)
	den.Add(den, effIn)
	if den.Sign() == 0 {
		return nil, domain.ErrInsufficientLiquidity
	}

	out := new(big.Int).Mul(effIn, reserveOut)
	out.Div(out, den)
	return out, nil
}

// AmountIn prices an exact-output swap, solving the constant-product formula
// for the required input. The result ceilings so the computed minimum is
// never insufficient on execution.
func AmountIn(reserveIn, reserveOut, amountOut *big.Int, feeBps uint16) (*big.Int, error) {
	if !positive(amountOut) {
		return nil, domain.ErrInvalidAmount
	}
	if !positive(reserveIn) || !positive(reserveOut) || feeBps >= BpsDenominator {
		return nil, domain.ErrInsufficientLiquidity
	}
	// Draining the out-reserve to zero (or below) is unpriceable.
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, domain.ErrInsufficientLiquidity
	}

	// in = ceil(reserveIn * out * 10000 / ((reserveOut - out) * (10000 - fee)))
	num := new(big.Int).Mul(reserveIn, amountOut)
	num.Mul(num, bpsDenom)

	den := getBigInt()
	defer putBigInt(den)
	den.Sub(reserveOut, amountOut)
	fee := getBigInt()
	defer putBigInt(fee)
	fee.SetInt64(int64(BpsDenominator - feeBps))
	den.Mul(den, fee)

	return ceilDiv(num, den), nil
}

// ceilDiv returns ceil(num/den) in a fresh big.Int. num is consumed.
func ceilDiv(num, den *big.Int) *big.Int {
	num.Add(num, den)
	num.Sub(num, one)
	return num.Div(num, den)
}

// hopOut dispatches one exact-input hop to the pool's curve.
func hopOut(st *domain.PoolState, input domain.AssetID, amountIn *big.Int) (*big.Int, error) {
	rIn, rOut, ok := st.ReservesFor(input)
	if !ok {
		return nil, domain.ErrInvalidRoute
	}
	if st.ID.Stable {
		return StableAmountOut(rIn, rOut, amountIn, st.FeeBps, st.Amplification)
	}
	return AmountOut(rIn, rOut, amountIn, st.FeeBps)
}

// hopIn dispatches one exact-output hop to the pool's curve.
func hopIn(st *domain.PoolState, input domain.AssetID, amountOut *big.Int) (*big.Int, error) {
	rIn, rOut, ok := st.ReservesFor(input)
	if !ok {
		return nil, domain.ErrInvalidRoute
	}
	if st.ID.Stable {
		return StableAmountIn(rIn, rOut, amountOut, st.FeeBps, st.Amplification)
	}
	return AmountIn(rIn, rOut, amountOut, st.FeeBps)
}

// ComposeExactInput applies the single-hop formula sequentially along the
// route, feeding each hop's output into the next hop.
func ComposeExactInput(route domain.Route, states []*domain.PoolState, input domain.AssetID, amountIn *big.Int) (*big.Int, error) {
	if len(route) == 0 || len(states) != len(route) {
		return nil, domain.ErrInvalidRoute
	}
	cur := input
	amt := amountIn
	for i, pool := range route {
		out, err := hopOut(states[i], cur, amt)
		if err != nil {
			return nil, err
		}
		next, ok := pool.Other(cur)
		if !ok {
			return nil, domain.ErrInvalidRoute
		}
		cur = next
		amt = out
	}
	return amt, nil
}

// ComposeExactOutput runs the composition in reverse: from the final desired
// output backward to the required first-hop input.
func ComposeExactOutput(route domain.Route, states []*domain.PoolState, input domain.AssetID, amountOut *big.Int) (*big.Int, error) {
	if len(route) == 0 || len(states) != len(route) {
		return nil, domain.ErrInvalidRoute
	}
	assets, err := route.Assets(input)
	if err != nil {
		return nil, err
	}
	amt := amountOut
	for i := len(route) - 1; i >= 0; i-- {
		in, err := hopIn(states[i], assets[i], amt)
		if err != nil {
			return nil, err
		}
		amt = in
	}
	return amt, nil
}
