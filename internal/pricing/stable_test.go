package pricing

import (
	"errors"
	"math/big"
	"testing"

	"github.com/meridianswap/preview-engine/internal/domain"
)

func TestStableAmountOut(t *testing.T) {
	// Balanced 1:1 stable pool, amp 100, 4 bps fee. The amplified curve keeps
	// the output within a fraction of a percent of the input.
	reserveIn := big.NewInt(1_000_000_000)
	reserveOut := big.NewInt(1_000_000_000)
	amountIn := big.NewInt(10_000_000)

	out, err := StableAmountOut(reserveIn, reserveOut, amountIn, 4, 100)
	if err != nil {
		t.Fatalf("StableAmountOut: %v", err)
	}
	if out.Int64() != 9_995_010 {
		t.Errorf("StableAmountOut = %d, want 9995010", out.Int64())
	}

	// Compare against the constant product curve on the same reserves: the
	// amplified curve must quote a better price near balance.
	cpOut, err := AmountOut(reserveIn, reserveOut, amountIn, 4)
	if err != nil {
		t.Fatalf("AmountOut: %v", err)
	}
	if out.Cmp(cpOut) <= 0 {
		t.Errorf("stable out %s <= constant product out %s", out, cpOut)
	}
}

func TestStableAmountInRoundTrip(t *testing.T) {
	reserveIn := big.NewInt(1_000_000_000)
	reserveOut := big.NewInt(1_000_000_000)

	out, err := StableAmountOut(reserveIn, reserveOut, big.NewInt(10_000_000), 4, 100)
	if err != nil {
		t.Fatalf("StableAmountOut: %v", err)
	}

	in, err := StableAmountIn(reserveIn, reserveOut, out, 4, 100)
	if err != nil {
		t.Fatalf("StableAmountIn: %v", err)
	}
	if in.Cmp(big.NewInt(10_000_000)) > 0 {
		t.Errorf("round trip requires %s > original 10000000", in)
	}
	if in.Int64() != 10_000_000 {
		t.Errorf("StableAmountIn = %d, want 10000000", in.Int64())
	}
}

func TestStableAmountOutMonotonic(t *testing.T) {
	reserveIn := big.NewInt(1_000_000_000)
	reserveOut := big.NewInt(1_000_000_000)

	prev := big.NewInt(-1)
	for _, in := range []int64{100_000, 1_000_000, 10_000_000, 100_000_000, 500_000_000} {
		out, err := StableAmountOut(reserveIn, reserveOut, big.NewInt(in), 4, 100)
		if err != nil {
			t.Fatalf("in=%d: %v", in, err)
		}
		if out.Cmp(prev) < 0 {
			t.Errorf("output decreased: in=%d out=%s prev=%s", in, out, prev)
		}
		if out.Cmp(reserveOut) >= 0 {
			t.Errorf("output %s >= reserve %s", out, reserveOut)
		}
		prev = out
	}
}

func TestStableRejectsDegenerateInputs(t *testing.T) {
	r := big.NewInt(1_000_000)

	if _, err := StableAmountOut(r, r, big.NewInt(0), 4, 100); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("zero input: got %v", err)
	}
	if _, err := StableAmountOut(r, r, big.NewInt(1_000), 4, 0); !errors.Is(err, domain.ErrInsufficientLiquidity) {
		t.Errorf("zero amp: got %v", err)
	}
	if _, err := StableAmountIn(r, r, r, 4, 100); !errors.Is(err, domain.ErrInsufficientLiquidity) {
		t.Errorf("draining output: got %v", err)
	}
}

func BenchmarkStableAmountOut(b *testing.B) {
	reserveIn := big.NewInt(1_000_000_000)
	reserveOut := big.NewInt(1_000_000_000)
	amountIn := big.NewInt(10_000_000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = StableAmountOut(reserveIn, reserveOut, amountIn, 4, 100)
	}
}
