package assets

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/meridianswap/preview-engine/internal/domain"
)

func aid(b byte) domain.AssetID {
	var id domain.AssetID
	id[31] = b
	return id
}

func testRegistry() StaticRegistry {
	return StaticRegistry{
		aid(1): {AssetID: aid(1), Symbol: "MRD", Decimals: 9, Name: "Meridian"},
		aid(2): {AssetID: aid(2), Symbol: "USDM", Decimals: 6, Name: "Meridian USD"},
	}
}

func TestPairResolverResolve(t *testing.T) {
	r := NewPairResolver(testRegistry())

	pair, err := r.Resolve(context.Background(), aid(1), aid(2))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if pair.SellDecimals != 9 || pair.BuyDecimals != 6 {
		t.Errorf("decimals = %d/%d, want 9/6", pair.SellDecimals, pair.BuyDecimals)
	}
	if pair.SellSymbol != "MRD" || pair.BuySymbol != "USDM" {
		t.Errorf("symbols = %s/%s", pair.SellSymbol, pair.BuySymbol)
	}

	// The default fallback pool is always the canonical volatile pool.
	want := domain.NewPoolID(aid(1), aid(2), false)
	if pair.DefaultPool != want {
		t.Errorf("DefaultPool = %v, want %v", pair.DefaultPool, want)
	}
	if pair.DefaultPool.Stable {
		t.Error("default pool must never be stable")
	}
}

func TestPairResolverSameAsset(t *testing.T) {
	r := NewPairResolver(testRegistry())

	_, err := r.Resolve(context.Background(), aid(1), aid(1))
	if !errors.Is(err, domain.ErrSameAsset) {
		t.Errorf("expected ErrSameAsset, got %v", err)
	}
}

func TestPairResolverUnknownAsset(t *testing.T) {
	r := NewPairResolver(testRegistry())

	_, err := r.Resolve(context.Background(), aid(1), aid(99))
	if !errors.Is(err, domain.ErrUnknownAsset) {
		t.Errorf("expected ErrUnknownAsset, got %v", err)
	}
	_, err = r.Resolve(context.Background(), aid(99), aid(1))
	if !errors.Is(err, domain.ErrUnknownAsset) {
		t.Errorf("expected ErrUnknownAsset, got %v", err)
	}
}

// countingRegistry counts lookups that reach the inner registry.
type countingRegistry struct {
	inner StaticRegistry
	calls atomic.Int64
}

func (r *countingRegistry) Metadata(ctx context.Context, id domain.AssetID) (domain.AssetMetadata, error) {
	r.calls.Add(1)
	return r.inner.Metadata(ctx, id)
}

func TestCachedRegistryMemoizes(t *testing.T) {
	counting := &countingRegistry{inner: testRegistry()}
	cached := NewCachedRegistry(counting)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := cached.Metadata(ctx, aid(1)); err != nil {
			t.Fatalf("Metadata: %v", err)
		}
	}
	if n := counting.calls.Load(); n != 1 {
		t.Errorf("inner registry hit %d times, want 1", n)
	}

	// Negative results are not cached.
	for i := 0; i < 3; i++ {
		if _, err := cached.Metadata(ctx, aid(99)); err == nil {
			t.Fatal("expected error for unknown asset")
		}
	}
	if n := counting.calls.Load(); n != 4 {
		t.Errorf("inner registry hit %d times, want 4 (1 cached + 3 uncached misses)", n)
	}
}

func TestCachedRegistryWarmAndSnapshot(t *testing.T) {
	counting := &countingRegistry{inner: testRegistry()}
	cached := NewCachedRegistry(counting)

	cached.Warm([]domain.AssetMetadata{
		{AssetID: aid(7), Symbol: "WARM", Decimals: 8, Name: "Warmed"},
	})

	meta, err := cached.Metadata(context.Background(), aid(7))
	if err != nil {
		t.Fatalf("Metadata after warm: %v", err)
	}
	if meta.Symbol != "WARM" || counting.calls.Load() != 0 {
		t.Error("warmed entry must be served without an inner lookup")
	}

	snap := cached.Snapshot()
	if len(snap) != 1 || snap[0].AssetID != aid(7) {
		t.Errorf("Snapshot = %v", snap)
	}
}
