package pricing

import (
	"sync"

	"github.com/holiman/uint256"
)

// uint64 fast path for the quote hot loop. Intermediate products of two
// uint64 reserves overflow 64 bits, so the widening runs through uint256
// scratch values drawn from a pool.

var uint256Pool = sync.Pool{
	New: func() interface{} {
		return new(uint256.Int)
	},
}

func getU256() *uint256.Int  { return uint256Pool.Get().(*uint256.Int) }
func putU256(v *uint256.Int) { v.Clear(); uint256Pool.Put(v) }

// MulDiv performs floor(a * b / c) with a full-precision intermediate.
// Returns ok=false when c is zero or the result exceeds uint64.
func MulDiv(a, b, c uint64) (uint64, bool) {
	if c == 0 {
		return 0, false
	}
	x := getU256()
	y := getU256()
	defer putU256(x)
	defer putU256(y)

	x.SetUint64(a)
	y.SetUint64(b)
	x.Mul(x, y)
	y.SetUint64(c)
	x.Div(x, y)

	if !x.IsUint64() {
		return 0, false
	}
	return x.Uint64(), true
}

// FastAmountOut is the uint64 constant-product exact-input formula. ok=false
// means the caller must use the big.Int path (overflow, zero reserves, or a
// degenerate fee).
func FastAmountOut(reserveIn, reserveOut, amountIn uint64, feeBps uint16) (uint64, bool) {
	if reserveIn == 0 || reserveOut == 0 || amountIn == 0 || feeBps >= BpsDenominator {
		return 0, false
	}
	x := getU256()
	y := getU256()
	den := getU256()
	defer putU256(x)
	defer putU256(y)
	defer putU256(den)

	// effIn = amountIn * (10000 - fee)
	x.SetUint64(amountIn)
	y.SetUint64(uint64(BpsDenominator - feeBps))
	x.Mul(x, y)

	// den = reserveIn*10000 + effIn
	den.SetUint64(reserveIn)
	y.SetUint64(BpsDenominator)
	den.Mul(den, y)
	den.Add(den, x)

	// out = effIn * reserveOut / den
	y.SetUint64(reserveOut)
	x.Mul(x, y)
	x.Div(x, den)

	if !x.IsUint64() {
		return 0, false
	}
	return x.Uint64(), true
}

// FastAmountIn is the uint64 exact-output inverse with ceiling rounding.
func FastAmountIn(reserveIn, reserveOut, amountOut uint64, feeBps uint16) (uint64, bool) {
	if reserveIn == 0 || reserveOut == 0 || amountOut == 0 || feeBps >= BpsDenominator {
		return 0, false
	}
	if amountOut >= reserveOut {
		return 0, false
	}
	num := getU256()
	den := getU256()
	tmp := getU256()
	defer putU256(num)
	defer putU256(den)
	defer putU256(tmp)

	// num = reserveIn * amountOut * 10000
	num.SetUint64(reserveIn)
	tmp.SetUint64(amountOut)
	num.Mul(num, tmp)
	tmp.SetUint64(BpsDenominator)
	num.Mul(num, tmp)

	// den = (reserveOut - amountOut) * (10000 - fee)
	den.SetUint64(reserveOut - amountOut)
	tmp.SetUint64(uint64(BpsDenominator - feeBps))
	den.Mul(den, tmp)

	// ceil
	num.Add(num, den)
	tmp.SetUint64(1)
	num.Sub(num, tmp)
	num.Div(num, den)

	if !num.IsUint64() {
		return 0, false
	}
	return num.Uint64(), true
}
