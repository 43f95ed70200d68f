package preview

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/meridianswap/preview-engine/internal/assets"
	"github.com/meridianswap/preview-engine/internal/domain"
	"github.com/meridianswap/preview-engine/internal/metrics"
	"github.com/meridianswap/preview-engine/internal/routesource"
)

// RouteFinder is the remote path-finding source.
type RouteFinder interface {
	FindRoute(ctx context.Context, input, output domain.AssetID, amount *big.Int, tradeType domain.TradeType) (*routesource.RemoteRoute, error)
}

// FallbackSource prices against live on-chain reserves when the remote
// finder cannot produce a path.
type FallbackSource interface {
	PreviewDirect(ctx context.Context, pool domain.PoolID, input domain.AssetID, amount *big.Int, tradeType domain.TradeType) (amountIn, amountOut *big.Int, err error)
	PreviewRoute(ctx context.Context, route domain.Route, input domain.AssetID, amount *big.Int, tradeType domain.TradeType) (amountIn, amountOut *big.Int, err error)
}

// Resolver runs the source chain for one request tuple: cache, then the
// remote finder, then the on-chain fallback against the pair's default pool.
// It is stateless per call; the Coordinator layers session state on top.
type Resolver struct {
	remote   RouteFinder
	fallback FallbackSource
	cache    *Cache
}

func NewResolver(remote RouteFinder, fallback FallbackSource, cache *Cache) *Resolver {
	return &Resolver{remote: remote, fallback: fallback, cache: cache}
}

// Resolve produces a preview for one request tuple, falling back from remote
// to on-chain pricing. Only ErrRouteUnavailable triggers the fallback; every
// other remote error is terminal for the attempt.
func (r *Resolver) Resolve(ctx context.Context, pair *assets.ResolvedPair, amount *big.Int, tradeType domain.TradeType) (*domain.SwapPreview, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if p := r.cached(pair, amount, tradeType); p != nil {
		return p, nil
	}

	p, err := r.fromRemote(ctx, pair, amount, tradeType)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrRouteUnavailable) {
		return nil, err
	}

	metrics.FallbackActivations.Inc()
	return r.fromFallback(ctx, pair, amount, tradeType)
}

func (r *Resolver) cached(pair *assets.ResolvedPair, amount *big.Int, tradeType domain.TradeType) *domain.SwapPreview {
	if r.cache == nil {
		return nil
	}
	if p := r.cache.Get(pair.Sell, pair.Buy, amount, tradeType); p != nil {
		metrics.PreviewCacheHits.Inc()
		return p
	}
	metrics.PreviewCacheMisses.Inc()
	return nil
}

func (r *Resolver) fromRemote(ctx context.Context, pair *assets.ResolvedPair, amount *big.Int, tradeType domain.TradeType) (*domain.SwapPreview, error) {
	start := time.Now()
	route, err := r.remote.FindRoute(ctx, pair.Sell, pair.Buy, amount, tradeType)
	if err != nil {
		metrics.PreviewRequests.WithLabelValues(tradeType.String(), string(domain.SourceRemote), "error").Inc()
		return nil, err
	}

	in, out := route.InputAmount, route.OutputAmount
	if tradeType == domain.TradeExactInput {
		in = amount
	} else {
		out = amount
	}
	if in == nil || in.Sign() <= 0 || out == nil || out.Sign() <= 0 {
		metrics.PreviewRequests.WithLabelValues(tradeType.String(), string(domain.SourceRemote), "error").Inc()
		return nil, fmt.Errorf("%w: remote route missing amounts", domain.ErrRouteUnavailable)
	}

	p := &domain.SwapPreview{
		Route:     route.Path,
		AmountIn:  in,
		AmountOut: out,
		TradeType: tradeType,
		Source:    domain.SourceRemote,
		CreatedAt: time.Now(),
	}
	metrics.PreviewRequests.WithLabelValues(tradeType.String(), string(domain.SourceRemote), "ok").Inc()
	metrics.PreviewDuration.WithLabelValues(string(domain.SourceRemote)).Observe(time.Since(start).Seconds())
	if r.cache != nil {
		r.cache.Set(pair.Sell, pair.Buy, amount, tradeType, p)
	}
	return p, nil
}

func (r *Resolver) fromFallback(ctx context.Context, pair *assets.ResolvedPair, amount *big.Int, tradeType domain.TradeType) (*domain.SwapPreview, error) {
	start := time.Now()
	in, out, err := r.fallback.PreviewDirect(ctx, pair.DefaultPool, pair.Sell, amount, tradeType)
	if err != nil {
		metrics.PreviewRequests.WithLabelValues(tradeType.String(), string(domain.SourceOnchain), "error").Inc()
		switch {
		case errors.Is(err, domain.ErrPoolNotFound):
			metrics.NoRouteResults.WithLabelValues("pool_not_found").Inc()
			return nil, fmt.Errorf("%w: %v", domain.ErrNoRoute, err)
		case errors.Is(err, domain.ErrInsufficientLiquidity):
			metrics.NoRouteResults.WithLabelValues("insufficient_liquidity").Inc()
			return nil, err
		default:
			metrics.NoRouteResults.WithLabelValues("chain_error").Inc()
			return nil, fmt.Errorf("%w: %v", domain.ErrNoRoute, err)
		}
	}

	p := &domain.SwapPreview{
		Route:     domain.Route{pair.DefaultPool},
		AmountIn:  in,
		AmountOut: out,
		TradeType: tradeType,
		Source:    domain.SourceOnchain,
		CreatedAt: time.Now(),
	}
	metrics.PreviewRequests.WithLabelValues(tradeType.String(), string(domain.SourceOnchain), "ok").Inc()
	metrics.PreviewDuration.WithLabelValues(string(domain.SourceOnchain)).Observe(time.Since(start).Seconds())
	if r.cache != nil {
		r.cache.Set(pair.Sell, pair.Buy, amount, tradeType, p)
	}
	return p, nil
}
