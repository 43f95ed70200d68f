package routesource

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/meridianswap/preview-engine/internal/domain"
	"github.com/meridianswap/preview-engine/internal/metrics"
	"github.com/meridianswap/preview-engine/internal/pricing"
)

// ChainReader reads the live reserve state of one pool as of the latest
// block. Implementations must return domain.ErrPoolNotFound when the chain
// has no pool for the id.
type ChainReader interface {
	PoolState(ctx context.Context, id domain.PoolID) (*domain.PoolState, error)
}

// Previewer is the last-resort route source: it reads exactly the pools it is
// told about and delegates all arithmetic to the pricing package. Its own
// responsibility is reserve retrieval and error classification.
type Previewer struct {
	reader ChainReader
}

func NewPreviewer(reader ChainReader) *Previewer {
	return &Previewer{reader: reader}
}

// PreviewDirect prices a swap against a single pool, normally the pair's
// default volatile pool.
func (p *Previewer) PreviewDirect(ctx context.Context, pool domain.PoolID, input domain.AssetID, amount *big.Int, tradeType domain.TradeType) (amountIn, amountOut *big.Int, err error) {
	st, err := p.readState(ctx, pool)
	if err != nil {
		return nil, nil, err
	}

	rIn, rOut, ok := st.ReservesFor(input)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s not in pool %s", domain.ErrInvalidRoute, input, pool)
	}

	if tradeType == domain.TradeExactInput {
		// Volatile pools with uint64-sized values take the widening-free path.
		if !pool.Stable && amount.IsUint64() && rIn.IsUint64() && rOut.IsUint64() {
			if out, ok := pricing.FastAmountOut(rIn.Uint64(), rOut.Uint64(), amount.Uint64(), st.FeeBps); ok {
				return amount, new(big.Int).SetUint64(out), nil
			}
		}
		out, err := hopAmountOut(st, rIn, rOut, amount)
		if err != nil {
			return nil, nil, err
		}
		return amount, out, nil
	}

	if !pool.Stable && amount.IsUint64() && rIn.IsUint64() && rOut.IsUint64() {
		if in, ok := pricing.FastAmountIn(rIn.Uint64(), rOut.Uint64(), amount.Uint64(), st.FeeBps); ok {
			return new(big.Int).SetUint64(in), amount, nil
		}
	}
	in, err := hopAmountIn(st, rIn, rOut, amount)
	if err != nil {
		return nil, nil, err
	}
	return in, amount, nil
}

// PreviewRoute prices an explicit multi-hop path when the caller already
// knows one. ExactOutput composes in reverse from the desired final output.
func (p *Previewer) PreviewRoute(ctx context.Context, route domain.Route, input domain.AssetID, amount *big.Int, tradeType domain.TradeType) (amountIn, amountOut *big.Int, err error) {
	if len(route) == 0 {
		return nil, nil, domain.ErrInvalidRoute
	}

	states := make([]*domain.PoolState, len(route))
	for i, id := range route {
		st, err := p.readState(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		states[i] = st
	}

	if tradeType == domain.TradeExactInput {
		out, err := pricing.ComposeExactInput(route, states, input, amount)
		if err != nil {
			return nil, nil, err
		}
		return amount, out, nil
	}

	in, err := pricing.ComposeExactOutput(route, states, input, amount)
	if err != nil {
		return nil, nil, err
	}
	return in, amount, nil
}

func (p *Previewer) readState(ctx context.Context, id domain.PoolID) (*domain.PoolState, error) {
	st, err := p.reader.PoolState(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPoolNotFound) {
			metrics.PoolReads.WithLabelValues("not_found").Inc()
			return nil, err
		}
		metrics.PoolReads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("pool state read failed: %w", err)
	}
	metrics.PoolReads.WithLabelValues("ok").Inc()

	if st == nil || st.Reserve0 == nil || st.Reserve1 == nil ||
		st.Reserve0.Sign() <= 0 || st.Reserve1.Sign() <= 0 {
		return nil, fmt.Errorf("%w: pool %s has empty reserves", domain.ErrInsufficientLiquidity, id)
	}
	return st, nil
}

func hopAmountOut(st *domain.PoolState, rIn, rOut, amountIn *big.Int) (*big.Int, error) {
	if st.ID.Stable {
		return pricing.StableAmountOut(rIn, rOut, amountIn, st.FeeBps, st.Amplification)
	}
	return pricing.AmountOut(rIn, rOut, amountIn, st.FeeBps)
}

func hopAmountIn(st *domain.PoolState, rIn, rOut, amountOut *big.Int) (*big.Int, error) {
	if st.ID.Stable {
		return pricing.StableAmountIn(rIn, rOut, amountOut, st.FeeBps, st.Amplification)
	}
	return pricing.AmountIn(rIn, rOut, amountOut, st.FeeBps)
}
