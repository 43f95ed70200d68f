package domain

import (
	"math/big"
	"time"
)

type PreviewSource string

const (
	SourceRemote  PreviewSource = "remote"
	SourceOnchain PreviewSource = "onchain"
)

// SwapPreview is the merged result of one route resolution. Previews are
// immutable: a superseded preview is discarded, never updated in place.
type SwapPreview struct {
	Route     Route         `json:"route"`
	AmountIn  *big.Int      `json:"amountIn"`
	AmountOut *big.Int      `json:"amountOut"`
	TradeType TradeType     `json:"tradeType"`
	Source    PreviewSource `json:"source"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Age reports how long ago the preview was resolved, for staleness checks.
func (p *SwapPreview) Age(now time.Time) time.Duration {
	return now.Sub(p.CreatedAt)
}
