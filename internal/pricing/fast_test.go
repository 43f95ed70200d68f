package pricing

import (
	"math"
	"math/big"
	"testing"
)

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name     string
		a, b, c  uint64
		expected uint64
		ok       bool
	}{
		{"simple", 6, 7, 2, 21, true},
		{"floors", 10, 10, 3, 33, true},
		{"intermediate overflow still exact", math.MaxUint64, 10_000, 10_000, math.MaxUint64, true},
		{"result overflow", math.MaxUint64, 2, 1, 0, false},
		{"divide by zero", 1, 1, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MulDiv(tt.a, tt.b, tt.c)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.expected {
				t.Errorf("MulDiv = %d, want %d", got, tt.expected)
			}
		})
	}
}

// TestFastPathMatchesBigInt cross-checks the uint64 formulas against the
// big.Int reference across a spread of magnitudes.
func TestFastPathMatchesBigInt(t *testing.T) {
	cases := []struct {
		reserveIn, reserveOut, amount uint64
		feeBps                        uint16
	}{
		{1_000_000_000, 2_000_000_000, 10_000_000, 30},
		{1_000_000, 1_000_000, 1_000, 0},
		{5_000_000_000_000, 77_000_000, 123_456_789, 100},
		{math.MaxUint64 / 2, math.MaxUint64 / 2, 1_000_000_000_000, 25},
	}

	for _, tc := range cases {
		fastOut, ok := FastAmountOut(tc.reserveIn, tc.reserveOut, tc.amount, tc.feeBps)
		if !ok {
			t.Fatalf("FastAmountOut(%d,%d,%d,%d) not ok", tc.reserveIn, tc.reserveOut, tc.amount, tc.feeBps)
		}
		refOut, err := AmountOut(
			new(big.Int).SetUint64(tc.reserveIn),
			new(big.Int).SetUint64(tc.reserveOut),
			new(big.Int).SetUint64(tc.amount),
			tc.feeBps,
		)
		if err != nil {
			t.Fatalf("AmountOut: %v", err)
		}
		if refOut.Uint64() != fastOut {
			t.Errorf("exact-in mismatch: fast=%d big=%s (case %+v)", fastOut, refOut, tc)
		}

		if fastOut == 0 || fastOut >= tc.reserveOut {
			continue
		}
		fastIn, ok := FastAmountIn(tc.reserveIn, tc.reserveOut, fastOut, tc.feeBps)
		if !ok {
			t.Fatalf("FastAmountIn not ok (case %+v)", tc)
		}
		refIn, err := AmountIn(
			new(big.Int).SetUint64(tc.reserveIn),
			new(big.Int).SetUint64(tc.reserveOut),
			new(big.Int).SetUint64(fastOut),
			tc.feeBps,
		)
		if err != nil {
			t.Fatalf("AmountIn: %v", err)
		}
		if refIn.Uint64() != fastIn {
			t.Errorf("exact-out mismatch: fast=%d big=%s (case %+v)", fastIn, refIn, tc)
		}
	}
}

func TestFastAmountInRejectsDrain(t *testing.T) {
	if _, ok := FastAmountIn(1_000_000, 1_000_000, 1_000_000, 30); ok {
		t.Error("draining the out-reserve must not be priceable")
	}
}

func BenchmarkFastAmountOut(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = FastAmountOut(1_000_000_000, 2_000_000_000, 10_000_000, 30)
	}
}

func BenchmarkFastAmountIn(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = FastAmountIn(1_000_000_000, 2_000_000_000, 10_000_000, 30)
	}
}
