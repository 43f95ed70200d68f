package assets

import (
	"context"
	"fmt"

	"github.com/meridianswap/preview-engine/internal/domain"
)

// ResolvedPair carries the canonical identifiers and precisions for one
// sell/buy pair, plus the default fallback pool.
type ResolvedPair struct {
	Sell         domain.AssetID
	Buy          domain.AssetID
	SellDecimals uint8
	BuyDecimals  uint8
	SellSymbol   string
	BuySymbol    string

	// DefaultPool is always the canonical volatile pool for the pair. Stable
	// pools are only reachable through explicit route data from the path
	// finder, never guessed.
	DefaultPool domain.PoolID
}

// PairResolver resolves two asset identifiers plus a trade direction into
// stable identifiers and decimal precisions.
type PairResolver struct {
	registry Registry
}

func NewPairResolver(registry Registry) *PairResolver {
	return &PairResolver{registry: registry}
}

func (r *PairResolver) Resolve(ctx context.Context, sell, buy domain.AssetID) (*ResolvedPair, error) {
	if sell == buy {
		return nil, domain.ErrSameAsset
	}

	sellMeta, err := r.registry.Metadata(ctx, sell)
	if err != nil {
		return nil, fmt.Errorf("%w: sell asset %s: %v", domain.ErrUnknownAsset, sell, err)
	}
	buyMeta, err := r.registry.Metadata(ctx, buy)
	if err != nil {
		return nil, fmt.Errorf("%w: buy asset %s: %v", domain.ErrUnknownAsset, buy, err)
	}

	return &ResolvedPair{
		Sell:         sell,
		Buy:          buy,
		SellDecimals: sellMeta.Decimals,
		BuyDecimals:  buyMeta.Decimals,
		SellSymbol:   sellMeta.Symbol,
		BuySymbol:    buyMeta.Symbol,
		DefaultPool:  domain.NewPoolID(sell, buy, false),
	}, nil
}
