// Package amounts converts human decimal input into integer base-unit
// amounts and debounces keystroke-rate input streams.
package amounts

import (
	"math/big"
	"strings"
)

var pow10 = func() []*big.Int {
	// Decimals is a uint8 but no registered asset exceeds 30; precompute the
	// common range and fall back to Exp above it.
	tab := make([]*big.Int, 31)
	ten := big.NewInt(10)
	tab[0] = big.NewInt(1)
	for i := 1; i < len(tab); i++ {
		tab[i] = new(big.Int).Mul(tab[i-1], ten)
	}
	return tab
}()

func pow10For(decimals uint8) *big.Int {
	if int(decimals) < len(pow10) {
		return pow10[decimals]
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// Normalize converts a human decimal string into an integer base-unit amount
// using the given decimal precision. The accepted grammar is digits with at
// most one separator ('.' or ',') and an optional fractional part. Fractional
// digits beyond the asset's precision are truncated, never rounded up, so the
// engine never requests more than the user typed.
//
// ok=false is not an error: it is the legitimate "no amount yet" state while
// the user is still typing ("", ".", "1.2.3", "1e5", ...).
func Normalize(raw string, decimals uint8) (*big.Int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}

	// Accept ',' as a locale separator but never both.
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			return nil, false
		}
		s = strings.Replace(s, ",", ".", 1)
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		if strings.IndexByte(s[i+1:], '.') >= 0 {
			return nil, false
		}
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return nil, false
	}
	if !digitsOnly(intPart) || !digitsOnly(fracPart) {
		return nil, false
	}

	// Truncate excess fractional digits.
	if len(fracPart) > int(decimals) {
		fracPart = fracPart[:decimals]
	}

	value := new(big.Int)
	if intPart != "" {
		if _, ok := value.SetString(intPart, 10); !ok {
			return nil, false
		}
	}
	value.Mul(value, pow10For(decimals))

	if fracPart != "" {
		frac := new(big.Int)
		if _, ok := frac.SetString(fracPart, 10); !ok {
			return nil, false
		}
		// Scale the fraction up to base units: "5" at 6 decimals is 500000.
		frac.Mul(frac, pow10For(decimals-uint8(len(fracPart))))
		value.Add(value, frac)
	}

	return value, true
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
