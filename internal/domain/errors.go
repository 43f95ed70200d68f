package domain

import "errors"

var (
	// ErrUnknownAsset means asset metadata could not be resolved. Terminal for
	// the pair: callers cannot proceed until the pair changes.
	ErrUnknownAsset = errors.New("unknown asset")

	// ErrSameAsset rejects a pair whose sell and buy sides are identical.
	ErrSameAsset = errors.New("sell and buy assets are identical")

	// ErrRouteUnavailable covers every remote route-finder failure mode:
	// transport error, non-2xx response, or an empty path. Callers recover by
	// falling back to on-chain pricing; the distinction is deliberately not
	// surfaced.
	ErrRouteUnavailable = errors.New("remote route finder unavailable")

	// ErrPoolNotFound means the chain has no pool for the requested PoolID.
	ErrPoolNotFound = errors.New("pool not found")

	// ErrInsufficientLiquidity means the requested amount cannot be priced
	// against current reserves (zero reserves, or an exact-output amount that
	// would drain a reserve).
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrNoRoute is the terminal no-route state after both sources failed.
	ErrNoRoute = errors.New("no route found")

	// ErrInvalidRoute flags a hop path that is not asset-contiguous.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrInvalidAmount flags a zero or negative swap amount.
	ErrInvalidAmount = errors.New("invalid amount")
)
