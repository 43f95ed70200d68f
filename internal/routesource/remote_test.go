package routesource

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/meridianswap/preview-engine/internal/domain"
)

func aid(b byte) domain.AssetID {
	var id domain.AssetID
	id[31] = b
	return id
}

func hopJSON(a, b domain.AssetID, stable bool) string {
	return fmt.Sprintf(`["%s","%s",%v]`, a, b, stable)
}

func TestRemoteFinderSuccess(t *testing.T) {
	input, mid, output := aid(1), aid(2), aid(3)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/find_route" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprintf(w, `{"path":[%s,%s],"input_amount":10000000,"output_amount":19743160}`,
			hopJSON(input, mid, false), hopJSON(mid, output, true))
	}))
	defer srv.Close()

	f := NewRemoteFinder(srv.URL, 2, time.Second)
	route, err := f.FindRoute(context.Background(), input, output, big.NewInt(10_000_000), domain.TradeExactInput)
	if err != nil {
		t.Fatalf("FindRoute: %v", err)
	}

	if len(route.Path) != 2 {
		t.Fatalf("path length %d, want 2", len(route.Path))
	}
	if !route.Path[1].Stable {
		t.Error("second hop must be stable")
	}
	if route.OutputAmount.Int64() != 19_743_160 {
		t.Errorf("output amount %s", route.OutputAmount)
	}
}

func TestRemoteFinderEmptyPathIsUnavailable(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"path":[],"input_amount":0,"output_amount":0}`)
	}))
	defer srv.Close()

	f := NewRemoteFinder(srv.URL, 2, time.Second)
	_, err := f.FindRoute(context.Background(), aid(1), aid(2), big.NewInt(1_000), domain.TradeExactInput)
	if !errors.Is(err, domain.ErrRouteUnavailable) {
		t.Fatalf("expected ErrRouteUnavailable, got %v", err)
	}

	// An empty path is a definitive answer, not a transient failure.
	if n := calls.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1 (no retry on empty path)", n)
	}
}

func TestRemoteFinderRetriesServerError(t *testing.T) {
	var calls atomic.Int64
	input, output := aid(1), aid(2)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"path":[%s],"input_amount":1000,"output_amount":997}`, hopJSON(input, output, false))
	}))
	defer srv.Close()

	f := NewRemoteFinder(srv.URL, 2, time.Second)
	route, err := f.FindRoute(context.Background(), input, output, big.NewInt(1_000), domain.TradeExactInput)
	if err != nil {
		t.Fatalf("FindRoute after retry: %v", err)
	}
	if len(route.Path) != 1 {
		t.Errorf("path length %d", len(route.Path))
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server hit %d times, want 2", n)
	}
}

func TestRemoteFinderExhaustsAttempts(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewRemoteFinder(srv.URL, 2, time.Second)
	_, err := f.FindRoute(context.Background(), aid(1), aid(2), big.NewInt(1_000), domain.TradeExactInput)
	if !errors.Is(err, domain.ErrRouteUnavailable) {
		t.Fatalf("expected ErrRouteUnavailable, got %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server hit %d times, want 2", n)
	}
}

func TestRemoteFinderTransportError(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	f := NewRemoteFinder(srv.URL, 2, time.Second)
	_, err := f.FindRoute(context.Background(), aid(1), aid(2), big.NewInt(1_000), domain.TradeExactInput)
	if !errors.Is(err, domain.ErrRouteUnavailable) {
		t.Fatalf("expected ErrRouteUnavailable, got %v", err)
	}
}

func TestRemoteFinderRejectsBrokenPath(t *testing.T) {
	// Path that is not asset-contiguous with the requested endpoints.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"path":[%s],"input_amount":1000,"output_amount":900}`, hopJSON(aid(8), aid(9), false))
	}))
	defer srv.Close()

	f := NewRemoteFinder(srv.URL, 1, time.Second)
	_, err := f.FindRoute(context.Background(), aid(1), aid(2), big.NewInt(1_000), domain.TradeExactInput)
	if !errors.Is(err, domain.ErrRouteUnavailable) {
		t.Fatalf("expected ErrRouteUnavailable, got %v", err)
	}
}

func TestRemoteFinderRejectsNonPositiveAmount(t *testing.T) {
	f := NewRemoteFinder("http://unused", 1, time.Second)

	for _, amt := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5)} {
		if _, err := f.FindRoute(context.Background(), aid(1), aid(2), amt, domain.TradeExactInput); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("amount %v: expected ErrInvalidAmount, got %v", amt, err)
		}
	}
}
