// Package routesource implements the two route discovery sources: the remote
// path-finding service and the on-chain single/multi-hop fallback.
package routesource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/meridianswap/preview-engine/internal/domain"
	"github.com/meridianswap/preview-engine/internal/metrics"
)

// RemoteRoute is a path and amount pair as reported by the remote route
// finder.
type RemoteRoute struct {
	Path         domain.Route
	InputAmount  *big.Int
	OutputAmount *big.Int
}

// RemoteFinder queries the external path-finding service. It is the
// preferred source: a non-empty path from it is authoritative.
//
// Transport errors, non-2xx responses and empty paths are all reported as
// ErrRouteUnavailable; the coordinator treats them identically and falls back
// to on-chain pricing.
type RemoteFinder struct {
	baseURL  string
	attempts int
	client   *http.Client
}

func NewRemoteFinder(baseURL string, attempts int, timeout time.Duration) *RemoteFinder {
	if attempts < 1 {
		attempts = 1
	}
	return &RemoteFinder{
		baseURL:  baseURL,
		attempts: attempts,
		client:   &http.Client{Timeout: timeout},
	}
}

type findRouteRequest struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Amount    string `json:"amount"`
	TradeType string `json:"trade_type"`
}

type findRouteResponse struct {
	Path         []routeHop  `json:"path"`
	InputAmount  json.Number `json:"input_amount"`
	OutputAmount json.Number `json:"output_amount"`
}

// routeHop decodes the wire triple [assetA, assetB, isStable].
type routeHop struct {
	AssetA domain.AssetID
	AssetB domain.AssetID
	Stable bool
}

func (h *routeHop) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("route hop: want 3 elements, got %d", len(raw))
	}
	var a, b string
	if err := sonic.Unmarshal(raw[0], &a); err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw[1], &b); err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw[2], &h.Stable); err != nil {
		return err
	}
	var err error
	if h.AssetA, err = domain.AssetIDFromHex(a); err != nil {
		return err
	}
	if h.AssetB, err = domain.AssetIDFromHex(b); err != nil {
		return err
	}
	return nil
}

// FindRoute asks the remote service for the best pool path for one input
// tuple. The request budget (attempts) covers transient transport failures;
// there is no backoff because quote requests are cheap idempotent reads.
func (f *RemoteFinder) FindRoute(ctx context.Context, input, output domain.AssetID, amount *big.Int, tradeType domain.TradeType) (*RemoteRoute, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	body, err := sonic.Marshal(findRouteRequest{
		Input:     input.String(),
		Output:    output.String(),
		Amount:    amount.String(),
		TradeType: tradeType.String(),
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		route, err := f.post(ctx, body)
		if err == nil {
			metrics.RemoteRouteRequests.WithLabelValues("ok").Inc()
			metrics.RemoteRouteDuration.Observe(time.Since(start).Seconds())

			if len(route.Path) == 0 {
				// An empty path is a definitive "no route" from the remote
				// index, not a transient failure; retrying cannot help.
				metrics.RemoteRouteRequests.WithLabelValues("empty").Inc()
				return nil, fmt.Errorf("%w: empty path", domain.ErrRouteUnavailable)
			}
			if err := route.Path.Validate(input, output); err != nil {
				log.Warn().Err(err).Msg("[remoteFinder] discarding non-contiguous remote path")
				return nil, fmt.Errorf("%w: %v", domain.ErrRouteUnavailable, err)
			}
			return route, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		log.Debug().Err(err).Int("attempt", attempt).Msg("[remoteFinder] find_route attempt failed")
	}

	metrics.RemoteRouteRequests.WithLabelValues("error").Inc()
	return nil, fmt.Errorf("%w: %v", domain.ErrRouteUnavailable, lastErr)
}

func (f *RemoteFinder) post(ctx context.Context, body []byte) (*RemoteRoute, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/find_route", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("route finder returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var payload findRouteResponse
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid route finder response: %w", err)
	}

	route := &RemoteRoute{Path: make(domain.Route, 0, len(payload.Path))}
	for _, hop := range payload.Path {
		route.Path = append(route.Path, domain.NewPoolID(hop.AssetA, hop.AssetB, hop.Stable))
	}

	if route.InputAmount, err = numberToBig(payload.InputAmount); err != nil {
		return nil, fmt.Errorf("invalid input_amount: %w", err)
	}
	if route.OutputAmount, err = numberToBig(payload.OutputAmount); err != nil {
		return nil, fmt.Errorf("invalid output_amount: %w", err)
	}
	return route, nil
}

// numberToBig accepts both integer JSON numbers and integer strings; the
// route finder emits plain numbers today but amounts above 2^53 arrive
// exactly either way.
func numberToBig(n json.Number) (*big.Int, error) {
	s := n.String()
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	return v, nil
}
