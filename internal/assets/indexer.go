package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/meridianswap/preview-engine/internal/domain"
)

// IndexerRegistry fetches asset metadata from the chain indexer's REST
// surface: GET {base}/assets/{assetId}.
type IndexerRegistry struct {
	baseURL string
	client  *http.Client
}

func NewIndexerRegistry(baseURL string, timeout time.Duration) *IndexerRegistry {
	return &IndexerRegistry{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type indexerAssetResponse struct {
	AssetID  string `json:"assetId"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Name     string `json:"name"`
}

func (r *IndexerRegistry) Metadata(ctx context.Context, id domain.AssetID) (domain.AssetMetadata, error) {
	url := r.baseURL + "/assets/" + id.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.AssetMetadata{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.AssetMetadata{}, fmt.Errorf("indexer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.AssetMetadata{}, fmt.Errorf("%w: %s", domain.ErrUnknownAsset, id)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.AssetMetadata{}, fmt.Errorf("indexer returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return domain.AssetMetadata{}, err
	}

	var payload indexerAssetResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return domain.AssetMetadata{}, fmt.Errorf("invalid indexer response: %w", err)
	}

	parsed, err := domain.AssetIDFromHex(payload.AssetID)
	if err != nil || parsed != id {
		log.Warn().Str("requested", id.String()).Str("returned", payload.AssetID).Msg("[assetRegistry] indexer returned mismatched asset id")
		return domain.AssetMetadata{}, fmt.Errorf("%w: %s", domain.ErrUnknownAsset, id)
	}

	return domain.AssetMetadata{
		AssetID:  id,
		Symbol:   payload.Symbol,
		Decimals: payload.Decimals,
		Name:     payload.Name,
	}, nil
}
