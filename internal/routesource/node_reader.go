package routesource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/meridianswap/preview-engine/internal/domain"
)

// NodeChainReader reads pool reserves from a chain node's read-only AMM
// endpoint: POST {base}/amm/pool_state with the canonical pool key.
type NodeChainReader struct {
	baseURL string
	client  *http.Client
}

func NewNodeChainReader(baseURL string, timeout time.Duration) *NodeChainReader {
	return &NodeChainReader{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type poolStateRequest struct {
	AssetA string `json:"asset_a"`
	AssetB string `json:"asset_b"`
	Stable bool   `json:"stable"`
}

type poolStateResponse struct {
	Reserve0      string `json:"reserve0"`
	Reserve1      string `json:"reserve1"`
	FeeBps        uint16 `json:"fee_bps"`
	Amplification uint64 `json:"amplification,omitempty"`
}

func (r *NodeChainReader) PoolState(ctx context.Context, id domain.PoolID) (*domain.PoolState, error) {
	body, err := sonic.Marshal(poolStateRequest{
		AssetA: id.AssetA.String(),
		AssetB: id.AssetB.String(),
		Stable: id.Stable,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/amm/pool_state", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pool state request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrPoolNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("node returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, err
	}

	var payload poolStateResponse
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid pool state response: %w", err)
	}

	reserve0, ok := new(big.Int).SetString(payload.Reserve0, 10)
	if !ok {
		return nil, fmt.Errorf("invalid reserve0 %q", payload.Reserve0)
	}
	reserve1, ok := new(big.Int).SetString(payload.Reserve1, 10)
	if !ok {
		return nil, fmt.Errorf("invalid reserve1 %q", payload.Reserve1)
	}

	return &domain.PoolState{
		ID:            id,
		Reserve0:      reserve0,
		Reserve1:      reserve1,
		FeeBps:        payload.FeeBps,
		Amplification: payload.Amplification,
	}, nil
}
