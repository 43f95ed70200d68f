package routesource

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/meridianswap/preview-engine/internal/domain"
)

// fakeReader serves pool states from a map; absent pools report
// ErrPoolNotFound like a real chain reader.
type fakeReader struct {
	pools map[domain.PoolID]*domain.PoolState
}

func (r *fakeReader) PoolState(_ context.Context, id domain.PoolID) (*domain.PoolState, error) {
	st, ok := r.pools[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPoolNotFound, id)
	}
	return st, nil
}

func newFakeReader(states ...*domain.PoolState) *fakeReader {
	r := &fakeReader{pools: make(map[domain.PoolID]*domain.PoolState)}
	for _, st := range states {
		r.pools[st.ID] = st
	}
	return r
}

func volatilePool(a, b byte, r0, r1 int64, feeBps uint16) *domain.PoolState {
	return &domain.PoolState{
		ID:       domain.NewPoolID(aid(a), aid(b), false),
		Reserve0: big.NewInt(r0),
		Reserve1: big.NewInt(r1),
		FeeBps:   feeBps,
	}
}

func TestPreviewDirectExactInput(t *testing.T) {
	pool := volatilePool(1, 2, 1_000_000_000, 2_000_000_000, 30)
	p := NewPreviewer(newFakeReader(pool))

	in, out, err := p.PreviewDirect(context.Background(), pool.ID, aid(1), big.NewInt(10_000_000), domain.TradeExactInput)
	if err != nil {
		t.Fatalf("PreviewDirect: %v", err)
	}
	if in.Int64() != 10_000_000 {
		t.Errorf("amountIn = %s", in)
	}
	if out.Int64() != 19_743_160 {
		t.Errorf("amountOut = %d, want 19743160", out.Int64())
	}
}

func TestPreviewDirectExactOutput(t *testing.T) {
	pool := volatilePool(1, 2, 1_000_000_000, 2_000_000_000, 30)
	p := NewPreviewer(newFakeReader(pool))

	in, out, err := p.PreviewDirect(context.Background(), pool.ID, aid(1), big.NewInt(19_743_160), domain.TradeExactOutput)
	if err != nil {
		t.Fatalf("PreviewDirect: %v", err)
	}
	if out.Int64() != 19_743_160 {
		t.Errorf("amountOut = %s", out)
	}
	if in.Int64() != 10_000_000 {
		t.Errorf("amountIn = %d, want 10000000", in.Int64())
	}
}

func TestPreviewDirectPoolNotFound(t *testing.T) {
	p := NewPreviewer(newFakeReader())

	_, _, err := p.PreviewDirect(context.Background(), domain.NewPoolID(aid(1), aid(2), false), aid(1), big.NewInt(1_000), domain.TradeExactInput)
	if !errors.Is(err, domain.ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

func TestPreviewDirectEmptyReserves(t *testing.T) {
	pool := volatilePool(1, 2, 0, 0, 30)
	p := NewPreviewer(newFakeReader(pool))

	_, _, err := p.PreviewDirect(context.Background(), pool.ID, aid(1), big.NewInt(1_000), domain.TradeExactInput)
	if !errors.Is(err, domain.ErrInsufficientLiquidity) {
		t.Fatalf("expected ErrInsufficientLiquidity, got %v", err)
	}
}

func TestPreviewDirectExactOutputDrain(t *testing.T) {
	pool := volatilePool(1, 2, 1_000_000, 1_000_000, 30)
	p := NewPreviewer(newFakeReader(pool))

	_, _, err := p.PreviewDirect(context.Background(), pool.ID, aid(1), big.NewInt(1_000_000), domain.TradeExactOutput)
	if !errors.Is(err, domain.ErrInsufficientLiquidity) {
		t.Fatalf("expected ErrInsufficientLiquidity, got %v", err)
	}
}

func TestPreviewRouteMultiHop(t *testing.T) {
	p1 := volatilePool(1, 2, 1_000_000_000, 1_000_000_000, 30)
	p2 := volatilePool(2, 3, 1_000_000_000, 1_000_000_000, 30)
	p := NewPreviewer(newFakeReader(p1, p2))
	route := domain.Route{p1.ID, p2.ID}

	in, out, err := p.PreviewRoute(context.Background(), route, aid(1), big.NewInt(1_000_000), domain.TradeExactInput)
	if err != nil {
		t.Fatalf("PreviewRoute: %v", err)
	}
	if in.Int64() != 1_000_000 {
		t.Errorf("amountIn = %s", in)
	}
	if out.Sign() <= 0 || out.Int64() >= 1_000_000 {
		t.Errorf("two balanced fee-charging hops must net below input: %s", out)
	}

	// Reverse direction: ask for exactly that output.
	backIn, backOut, err := p.PreviewRoute(context.Background(), route, aid(1), out, domain.TradeExactOutput)
	if err != nil {
		t.Fatalf("PreviewRoute exact output: %v", err)
	}
	if backOut.Cmp(out) != 0 {
		t.Errorf("amountOut = %s, want %s", backOut, out)
	}
	if backIn.Cmp(big.NewInt(1_000_000)) > 0 {
		t.Errorf("reverse requires %s > original input", backIn)
	}
}

func TestPreviewRouteMissingHop(t *testing.T) {
	p1 := volatilePool(1, 2, 1_000_000, 1_000_000, 30)
	p := NewPreviewer(newFakeReader(p1))
	route := domain.Route{p1.ID, domain.NewPoolID(aid(2), aid(3), false)}

	_, _, err := p.PreviewRoute(context.Background(), route, aid(1), big.NewInt(1_000), domain.TradeExactInput)
	if !errors.Is(err, domain.ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

func TestPreviewRouteEmpty(t *testing.T) {
	p := NewPreviewer(newFakeReader())
	_, _, err := p.PreviewRoute(context.Background(), nil, aid(1), big.NewInt(1_000), domain.TradeExactInput)
	if !errors.Is(err, domain.ErrInvalidRoute) {
		t.Fatalf("expected ErrInvalidRoute, got %v", err)
	}
}
