package pricing

import "math/big"

// MinimumOut applies a slippage tolerance to an exact-input quote:
//
//	floor(amountOut * (10000 - bps) / 10000)
//
// Slippage is expressed in integer basis points so the bound never suffers
// floating-point drift. bps >= 10000 degenerates to zero.
func MinimumOut(amountOut *big.Int, slippageBps uint16) *big.Int {
	if amountOut == nil {
		return nil
	}
	if slippageBps >= BpsDenominator {
		return new(big.Int)
	}
	out := new(big.Int).SetInt64(int64(BpsDenominator - slippageBps))
	out.Mul(out, amountOut)
	return out.Div(out, bpsDenom)
}

// MaximumIn applies a slippage tolerance to an exact-output quote:
//
//	ceil(amountIn * (10000 + bps) / 10000)
func MaximumIn(amountIn *big.Int, slippageBps uint16) *big.Int {
	if amountIn == nil {
		return nil
	}
	in := new(big.Int).SetInt64(int64(BpsDenominator) + int64(slippageBps))
	in.Mul(in, amountIn)
	return ceilDiv(in, bpsDenom)
}
