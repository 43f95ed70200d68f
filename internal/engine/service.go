// Package engine wires the preview pipeline into a DI service: registry,
// route sources, pricing cache and coordinator factory behind one instance.
package engine

import (
	"context"
	"math/big"
	"sync"

	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/meridianswap/preview-engine/internal/adapters/persistence"
	"github.com/meridianswap/preview-engine/internal/assets"
	"github.com/meridianswap/preview-engine/internal/common"
	"github.com/meridianswap/preview-engine/internal/config"
	"github.com/meridianswap/preview-engine/internal/domain"
	"github.com/meridianswap/preview-engine/internal/preview"
	"github.com/meridianswap/preview-engine/internal/routesource"
)

const ENGINE_SERVICE = "engine-service"

// Error aliases for callers that only import this package.
var (
	ErrUnknownAsset          = domain.ErrUnknownAsset
	ErrSameAsset             = domain.ErrSameAsset
	ErrNoRoute               = domain.ErrNoRoute
	ErrInsufficientLiquidity = domain.ErrInsufficientLiquidity
	ErrInvalidAmount         = domain.ErrInvalidAmount
)

type Service struct {
	container.BaseDIInstance
	logger *common.ServiceLogger

	registry *assets.CachedRegistry
	pairs    *assets.PairResolver
	remote   *routesource.RemoteFinder
	chain    routesource.ChainReader
	onchain  *routesource.Previewer
	cache    *preview.Cache
	resolver *preview.Resolver
	storage  *persistence.Storage

	// Last-known pool reserves, served when a live read fails and
	// persisted across restarts.
	snapMu    sync.RWMutex
	snapshots map[domain.PoolID]*domain.PoolState

	previewCfg *config.PreviewConfig
}

func (svc *Service) ID() string {
	return ENGINE_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = common.NewServiceLogger(svc)
	routeFinderCfg := c.GetConfig(config.ROUTE_FINDER_CONFIG_KEY).(*config.RouteFinderConfig)
	chainCfg := c.GetConfig(config.CHAIN_CONFIG_KEY).(*config.ChainConfig)
	svc.previewCfg = c.GetConfig(config.PREVIEW_CONFIG_KEY).(*config.PreviewConfig)

	svc.registry = assets.NewCachedRegistry(
		assets.NewIndexerRegistry(chainCfg.IndexerURL, chainCfg.ReadTimeout),
	)
	svc.pairs = assets.NewPairResolver(svc.registry)

	svc.remote = routesource.NewRemoteFinder(routeFinderCfg.BaseURL, routeFinderCfg.Attempts, routeFinderCfg.Timeout)
	svc.chain = routesource.NewNodeChainReader(chainCfg.NodeURL, chainCfg.ReadTimeout)
	svc.onchain = routesource.NewPreviewer(svc.chain)

	svc.cache = preview.NewCache(svc.previewCfg.RefreshTTL)
	svc.resolver = preview.NewResolver(svc.remote, svc.onchain, svc.cache)

	svc.snapshots = make(map[domain.PoolID]*domain.PoolState)
	if svc.previewCfg.SnapshotsEnabled {
		storage, err := persistence.NewStorage(svc.previewCfg.SnapshotDBPath)
		if err != nil {
			return err
		}
		svc.storage = storage
	}

	return nil
}

func (svc *Service) Start() error {
	if svc.storage == nil {
		return nil
	}

	metas, err := svc.storage.LoadAllAssets()
	if err != nil {
		log.Warn().Err(err).Msg("[engineService] metadata warm start failed, starting cold")
	} else {
		svc.registry.Warm(metas)
		log.Info().Int("assets", len(metas)).Msg("[engineService] warmed metadata cache from disk")
	}

	states, err := svc.storage.LoadAllPoolSnapshots()
	if err != nil {
		log.Warn().Err(err).Msg("[engineService] pool snapshot warm start failed")
		return nil
	}
	svc.snapMu.Lock()
	for _, st := range states {
		svc.snapshots[st.ID] = st
	}
	svc.snapMu.Unlock()
	log.Info().Int("pools", len(states)).Msg("[engineService] loaded last-known pool snapshots")
	return nil
}

func (svc *Service) Stop() error {
	svc.cache.Stop()

	if svc.storage == nil {
		return nil
	}

	if err := svc.storage.SaveAssetBatch(svc.registry.Snapshot()); err != nil {
		log.Error().Err(err).Msg("[engineService] failed to persist metadata snapshot")
	}

	svc.snapMu.RLock()
	states := make([]*domain.PoolState, 0, len(svc.snapshots))
	for _, st := range svc.snapshots {
		states = append(states, st)
	}
	svc.snapMu.RUnlock()
	if err := svc.storage.SavePoolSnapshotBatch(states); err != nil {
		log.Error().Err(err).Msg("[engineService] failed to persist pool snapshots")
	}
	return svc.storage.Close()
}

// ResolvePair resolves a sell/buy pair into canonical identifiers and
// precisions.
func (svc *Service) ResolvePair(ctx context.Context, sell, buy domain.AssetID) (*assets.ResolvedPair, error) {
	return svc.pairs.Resolve(ctx, sell, buy)
}

// AssetMetadata looks up one asset through the cached registry.
func (svc *Service) AssetMetadata(ctx context.Context, id domain.AssetID) (domain.AssetMetadata, error) {
	return svc.registry.Metadata(ctx, id)
}

// PoolState reads the live reserves of one pool. A successful read updates
// the last-known snapshot; a failed read for a pool that was seen before
// serves the stale snapshot instead of an error.
func (svc *Service) PoolState(ctx context.Context, id domain.PoolID) (*domain.PoolState, error) {
	st, err := svc.chain.PoolState(ctx, id)
	if err == nil {
		svc.snapMu.Lock()
		svc.snapshots[id] = st
		svc.snapMu.Unlock()
		return st, nil
	}

	svc.snapMu.RLock()
	last, ok := svc.snapshots[id]
	svc.snapMu.RUnlock()
	if ok {
		log.Warn().Err(err).Str("pool", id.String()).Msg("[engineService] live pool read failed, serving last-known snapshot")
		return last, nil
	}
	return nil, err
}

// PreviewOnce runs the full source chain for one request tuple without
// session state. This is the one-shot path the HTTP API uses.
func (svc *Service) PreviewOnce(ctx context.Context, pair *assets.ResolvedPair, amount *big.Int, tradeType domain.TradeType) (*domain.SwapPreview, error) {
	return svc.resolver.Resolve(ctx, pair, amount, tradeType)
}

// NewSession creates an interactive preview coordinator bound to this
// engine's sources. The caller owns its lifecycle and must Close it.
func (svc *Service) NewSession() *preview.Coordinator {
	return preview.NewCoordinator(
		svc.resolver,
		svc.pairs,
		svc.previewCfg.DebounceQuiet,
		svc.previewCfg.RefreshTTL,
		svc.previewCfg.DefaultSlippageBps,
	)
}

// DefaultSlippageBps exposes the configured default for the HTTP layer.
func (svc *Service) DefaultSlippageBps() uint16 {
	return svc.previewCfg.DefaultSlippageBps
}
