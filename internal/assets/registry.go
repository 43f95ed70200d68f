// Package assets resolves user-chosen asset identifiers into canonical
// on-chain identifiers and decimal precisions.
package assets

import (
	"context"
	"fmt"
	"sync"

	"github.com/meridianswap/preview-engine/internal/domain"
	"github.com/meridianswap/preview-engine/internal/metrics"
)

// Registry looks up asset metadata. Implementations are injected; the engine
// only relies on the contract that metadata is immutable post-issuance.
type Registry interface {
	Metadata(ctx context.Context, id domain.AssetID) (domain.AssetMetadata, error)
}

// CachedRegistry memoizes metadata lookups for the lifetime of the process.
// The cache is unbounded on purpose: decimals and symbol never change after
// issuance, so there is no invalidation contract.
type CachedRegistry struct {
	mu    sync.RWMutex
	inner Registry
	cache map[domain.AssetID]domain.AssetMetadata
}

func NewCachedRegistry(inner Registry) *CachedRegistry {
	return &CachedRegistry{
		inner: inner,
		cache: make(map[domain.AssetID]domain.AssetMetadata),
	}
}

func (r *CachedRegistry) Metadata(ctx context.Context, id domain.AssetID) (domain.AssetMetadata, error) {
	r.mu.RLock()
	meta, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return meta, nil
	}

	meta, err := r.inner.Metadata(ctx, id)
	if err != nil {
		// Negative results are not cached: the asset may simply not be
		// indexed yet.
		return domain.AssetMetadata{}, err
	}

	r.mu.Lock()
	r.cache[id] = meta
	size := len(r.cache)
	r.mu.Unlock()
	metrics.MetadataCacheSize.Set(float64(size))

	return meta, nil
}

// Warm preloads metadata, typically from the persisted snapshot at startup.
func (r *CachedRegistry) Warm(metas []domain.AssetMetadata) {
	r.mu.Lock()
	for _, m := range metas {
		r.cache[m.AssetID] = m
	}
	size := len(r.cache)
	r.mu.Unlock()
	metrics.MetadataCacheSize.Set(float64(size))
}

// Snapshot returns a copy of all cached metadata for persistence.
func (r *CachedRegistry) Snapshot() []domain.AssetMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AssetMetadata, 0, len(r.cache))
	for _, m := range r.cache {
		out = append(out, m)
	}
	return out
}

// StaticRegistry serves metadata from a fixed map. Used in tests and for
// config-pinned assets.
type StaticRegistry map[domain.AssetID]domain.AssetMetadata

func (r StaticRegistry) Metadata(_ context.Context, id domain.AssetID) (domain.AssetMetadata, error) {
	meta, ok := r[id]
	if !ok {
		return domain.AssetMetadata{}, fmt.Errorf("%w: %s", domain.ErrUnknownAsset, id)
	}
	return meta, nil
}
