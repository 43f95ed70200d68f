package amounts

import (
	"math/big"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals uint8
		expected string
		ok       bool
	}{
		{"integer", "1", 6, "1000000", true},
		{"fraction", "1.5", 6, "1500000", true},
		{"leading dot", ".5", 6, "500000", true},
		{"trailing dot", "1.", 6, "1000000", true},
		{"comma separator", "1,5", 6, "1500000", true},
		{"zero", "0", 6, "0", true},
		{"zero point zero", "0.0", 6, "0", true},
		{"whitespace trimmed", " 2.25 ", 2, "225", true},
		{"full precision", "0.000001", 6, "1", true},
		{"zero decimals", "42", 0, "42", true},

		// Excess fractional digits truncate, never round up.
		{"truncates excess digits", "1.9999999", 6, "1999999", true},
		{"truncates below one base unit", "0.0000009", 6, "0", true},
		{"fraction at zero decimals truncates", "1.9", 0, "1", true},

		// Incomplete or invalid input is the "no amount yet" state.
		{"empty", "", 6, "", false},
		{"only whitespace", "   ", 6, "", false},
		{"lone dot", ".", 6, "", false},
		{"lone comma", ",", 6, "", false},
		{"two dots", "1.2.3", 6, "", false},
		{"dot and comma", "1,2.3", 6, "", false},
		{"scientific notation", "1e5", 6, "", false},
		{"negative", "-1", 6, "", false},
		{"letters", "abc", 6, "", false},
		{"embedded space", "1 000", 6, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw, tt.decimals)
			if ok != tt.ok {
				t.Fatalf("Normalize(%q, %d) ok = %v, want %v", tt.raw, tt.decimals, ok, tt.ok)
			}
			if !ok {
				return
			}
			want, _ := new(big.Int).SetString(tt.expected, 10)
			if got.Cmp(want) != 0 {
				t.Errorf("Normalize(%q, %d) = %s, want %s", tt.raw, tt.decimals, got, tt.expected)
			}
		})
	}
}

// TestNormalizeNeverRoundsUp verifies the truncation invariant: the
// normalized amount is never larger than the exact decimal value.
func TestNormalizeNeverRoundsUp(t *testing.T) {
	// "1.23456789" at 4 decimals: exact value is 12345.6789 base units.
	got, ok := Normalize("1.23456789", 4)
	if !ok {
		t.Fatal("expected ok")
	}
	if got.Int64() != 12345 {
		t.Errorf("got %s, want 12345", got)
	}
}

func TestNormalizeLargeAmount(t *testing.T) {
	// Amounts above 2^64 base units must stay exact.
	got, ok := Normalize("123456789012345678901.5", 18)
	if !ok {
		t.Fatal("expected ok")
	}
	want, _ := new(big.Int).SetString("123456789012345678901500000000000000000", 10)
	if got.Cmp(want) != 0 {
		t.Errorf("got %s, want %s", got, want)
	}
}
