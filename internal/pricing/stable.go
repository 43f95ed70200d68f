package pricing

import (
	"math/big"

	"github.com/meridianswap/preview-engine/internal/domain"
)

// Amplified stable-swap curve for two-asset pools. The invariant is the
// standard StableSwap form with n=2:
//
//	Ann*S + D = Ann*D + D^3 / (4*x*y)    where Ann = A*n
//
// Both solvers are Newton iterations; 255 rounds is far beyond what
// convergence needs and matches on-chain implementations.
const stableMaxIterations = 255

var (
	two   = big.NewInt(2)
	three = big.NewInt(3)
	four  = big.NewInt(4)
)

// stableD computes the invariant D for balances (x, y) and amplification A.
func stableD(x, y *big.Int, amp uint64) *big.Int {
	s := new(big.Int).Add(x, y)
	if s.Sign() == 0 {
		return new(big.Int)
	}

	d := new(big.Int).Set(s)
	ann := new(big.Int).SetUint64(amp)
	ann.Mul(ann, two)

	prod := new(big.Int).Mul(x, y)
	prod.Mul(prod, four)

	dp := new(big.Int)
	num := new(big.Int)
	den := new(big.Int)
	prev := new(big.Int)
	diff := new(big.Int)

	for i := 0; i < stableMaxIterations; i++ {
		// dp = D^3 / (4*x*y)
		dp.Mul(d, d)
		dp.Mul(dp, d)
		dp.Div(dp, prod)

		prev.Set(d)

		// D = (Ann*S + 2*dp) * D / ((Ann-1)*D + 3*dp)
		num.Mul(ann, s)
		num.Add(num, new(big.Int).Mul(two, dp))
		num.Mul(num, d)

		den.Sub(ann, one)
		den.Mul(den, d)
		den.Add(den, new(big.Int).Mul(three, dp))

		d.Div(num, den)

		diff.Sub(d, prev)
		if diff.CmpAbs(one) <= 0 {
			break
		}
	}
	return d
}

// stableY solves the invariant for the counter-balance given the new input
// balance x and invariant d.
func stableY(x, d *big.Int, amp uint64) *big.Int {
	ann := new(big.Int).SetUint64(amp)
	ann.Mul(ann, two)

	// c = D^3 / (4*x*Ann)
	c := new(big.Int).Mul(d, d)
	c.Mul(c, d)
	c.Div(c, new(big.Int).Mul(four, new(big.Int).Mul(x, ann)))

	// b = x + D/Ann
	b := new(big.Int).Div(d, ann)
	b.Add(b, x)

	y := new(big.Int).Set(d)
	num := new(big.Int)
	den := new(big.Int)
	prev := new(big.Int)
	diff := new(big.Int)

	for i := 0; i < stableMaxIterations; i++ {
		prev.Set(y)

		// y = (y^2 + c) / (2y + b - D)
		num.Mul(y, y)
		num.Add(num, c)

		den.Mul(two, y)
		den.Add(den, b)
		den.Sub(den, d)

		y.Div(num, den)

		diff.Sub(y, prev)
		if diff.CmpAbs(one) <= 0 {
			break
		}
	}
	return y
}

// StableAmountOut prices an exact-input swap on an amplified stable pool.
// The fee is taken from the input leg before the curve, and the curve output
// keeps the chain's conservative minus-one rounding.
func StableAmountOut(reserveIn, reserveOut, amountIn *big.Int, feeBps uint16, amp uint64) (*big.Int, error) {
	if !positive(amountIn) {
		return nil, domain.ErrInvalidAmount
	}
	if !positive(reserveIn) || !positive(reserveOut) || amp == 0 || feeBps >= BpsDenominator {
		return nil, domain.ErrInsufficientLiquidity
	}

	// effIn = floor(in * (10000 - fee) / 10000)
	effIn := new(big.Int).SetInt64(int64(BpsDenominator - feeBps))
	effIn.Mul(effIn, amountIn)
	effIn.Div(effIn, bpsDenom)
	if effIn.Sign() == 0 {
		return nil, domain.ErrInvalidAmount
	}

	d := stableD(reserveIn, reserveOut, amp)
	x := new(big.Int).Add(reserveIn, effIn)
	y := stableY(x, d, amp)

	out := new(big.Int).Sub(reserveOut, y)
	out.Sub(out, one)
	if out.Sign() <= 0 {
		return nil, domain.ErrInsufficientLiquidity
	}
	return out, nil
}

// StableAmountIn solves the stable curve for the input required to receive an
// exact output, rounding the required input up at every step.
func StableAmountIn(reserveIn, reserveOut, amountOut *big.Int, feeBps uint16, amp uint64) (*big.Int, error) {
	if !positive(amountOut) {
		return nil, domain.ErrInvalidAmount
	}
	if !positive(reserveIn) || !positive(reserveOut) || amp == 0 || feeBps >= BpsDenominator {
		return nil, domain.ErrInsufficientLiquidity
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, domain.ErrInsufficientLiquidity
	}

	d := stableD(reserveIn, reserveOut, amp)
	y := new(big.Int).Sub(reserveOut, amountOut)
	x := stableY(y, d, amp)

	needIn := new(big.Int).Sub(x, reserveIn)
	needIn.Add(needIn, one)
	if needIn.Sign() <= 0 {
		return nil, domain.ErrInsufficientLiquidity
	}

	// Gross the curve input back up for the fee: ceil(need * 10000 / (10000 - fee)).
	num := needIn.Mul(needIn, bpsDenom)
	den := new(big.Int).SetInt64(int64(BpsDenominator - feeBps))
	return ceilDiv(num, den), nil
}
