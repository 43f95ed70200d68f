package domain

import (
	"errors"
	"strings"
	"testing"
)

func aid(b byte) AssetID {
	var id AssetID
	id[31] = b
	return id
}

func TestNewPoolIDCanonical(t *testing.T) {
	a, b := aid(1), aid(2)

	p1 := NewPoolID(a, b, false)
	p2 := NewPoolID(b, a, false)
	if p1 != p2 {
		t.Errorf("pool identity depends on argument order: %v vs %v", p1, p2)
	}
	if !p1.AssetA.Less(p1.AssetB) {
		t.Error("canonical order must put the smaller asset first")
	}

	// Stable and volatile pools over the same pair are distinct.
	stable := NewPoolID(a, b, true)
	if stable == p1 {
		t.Error("stable pool must be distinct from volatile pool over the same pair")
	}
}

func TestPoolIDOther(t *testing.T) {
	p := NewPoolID(aid(1), aid(2), false)

	if other, ok := p.Other(aid(1)); !ok || other != aid(2) {
		t.Errorf("Other(1) = %v, %v", other, ok)
	}
	if other, ok := p.Other(aid(2)); !ok || other != aid(1) {
		t.Errorf("Other(2) = %v, %v", other, ok)
	}
	if _, ok := p.Other(aid(3)); ok {
		t.Error("Other must reject assets outside the pool")
	}
}

func TestRouteValidate(t *testing.T) {
	ab := NewPoolID(aid(1), aid(2), false)
	bc := NewPoolID(aid(2), aid(3), false)
	cd := NewPoolID(aid(3), aid(4), true)

	tests := []struct {
		name   string
		route  Route
		input  AssetID
		output AssetID
		valid  bool
	}{
		{"direct", Route{ab}, aid(1), aid(2), true},
		{"direct reversed direction", Route{ab}, aid(2), aid(1), true},
		{"two hops", Route{ab, bc}, aid(1), aid(3), true},
		{"three hops mixed curves", Route{ab, bc, cd}, aid(1), aid(4), true},
		{"empty", Route{}, aid(1), aid(2), false},
		{"broken contiguity", Route{ab, cd}, aid(1), aid(4), false},
		{"wrong terminal", Route{ab, bc}, aid(1), aid(4), false},
		{"input not in first hop", Route{bc}, aid(1), aid(3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.route.Validate(tt.input, tt.output)
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid {
				if !errors.Is(err, ErrInvalidRoute) {
					t.Errorf("expected ErrInvalidRoute, got %v", err)
				}
			}
		})
	}
}

func TestRouteAssets(t *testing.T) {
	ab := NewPoolID(aid(1), aid(2), false)
	bc := NewPoolID(aid(2), aid(3), false)

	path, err := Route{ab, bc}.Assets(aid(1))
	if err != nil {
		t.Fatalf("Assets: %v", err)
	}
	want := []AssetID{aid(1), aid(2), aid(3)}
	if len(path) != len(want) {
		t.Fatalf("path length %d, want %d", len(path), len(want))
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("path[%d] = %s, want %s", i, path[i], want[i])
		}
	}
}

func TestReservesFor(t *testing.T) {
	st := &PoolState{ID: NewPoolID(aid(1), aid(2), false)}

	rIn, _, ok := st.ReservesFor(aid(1))
	if !ok || rIn != st.Reserve0 {
		t.Error("input=AssetA must orient Reserve0 as reserveIn")
	}
	rIn, _, ok = st.ReservesFor(aid(2))
	if !ok || rIn != st.Reserve1 {
		t.Error("input=AssetB must orient Reserve1 as reserveIn")
	}
	if _, _, ok := st.ReservesFor(aid(9)); ok {
		t.Error("foreign asset must not orient")
	}
}

func TestAssetIDFromHex(t *testing.T) {
	hex64 := strings.Repeat("ab", 32)

	id, err := AssetIDFromHex("0x" + hex64)
	if err != nil {
		t.Fatalf("with prefix: %v", err)
	}
	noPrefix, err := AssetIDFromHex(hex64)
	if err != nil {
		t.Fatalf("without prefix: %v", err)
	}
	if id != noPrefix {
		t.Error("prefix must not change the parsed id")
	}
	if id.String() != "0x"+hex64 {
		t.Errorf("String() = %s", id.String())
	}

	for _, bad := range []string{"", "0x", "0x1234", "0x" + strings.Repeat("zz", 32)} {
		if _, err := AssetIDFromHex(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestTradeTypeRoundTrip(t *testing.T) {
	for _, tt := range []TradeType{TradeExactInput, TradeExactOutput} {
		parsed, err := ParseTradeType(tt.String())
		if err != nil || parsed != tt {
			t.Errorf("round trip failed for %v: %v, %v", tt, parsed, err)
		}
	}
	if _, err := ParseTradeType("ExactIn"); err == nil {
		t.Error("expected error for unknown trade type")
	}
}
