// Package persistence stores asset metadata and last-known pool snapshots in
// an embedded bolt database so the engine can warm-start without hammering
// the indexer or the chain node.
package persistence

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/meridianswap/preview-engine/internal/domain"
)

const (
	AssetsBucket        = "assets"
	PoolSnapshotsBucket = "pool_snapshots"

	DefaultDBPath = "./data/preview-engine.db"
)

type StoredAssetMetadata struct {
	AssetID  string `json:"assetId"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Name     string `json:"name"`
}

// StoredPoolSnapshot is the last-known reserve state of one pool. Snapshots
// are informational only: live previews always read fresh reserves.
type StoredPoolSnapshot struct {
	AssetA        string `json:"assetA"`
	AssetB        string `json:"assetB"`
	Stable        bool   `json:"stable"`
	Reserve0      string `json:"reserve0"`
	Reserve1      string `json:"reserve1"`
	FeeBps        uint16 `json:"feeBps"`
	Amplification uint64 `json:"amplification,omitempty"`
}

type Storage struct {
	db     *boltdb.BoltDatabase
	dbPath string
}

func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	os.MkdirAll(filepath.Dir(dbPath), 0755)

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open database at %s", dbPath)
	}

	log.Info().Str("path", dbPath).Msg("[previewStorage] opened database")

	return &Storage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) SaveAsset(meta domain.AssetMetadata) error {
	data, err := sonic.Marshal(assetToStored(meta))
	if err != nil {
		return fmt.Errorf("failed to marshal asset: %w", err)
	}

	return s.db.Set(AssetsBucket, []byte(meta.AssetID.String()), data)
}

func (s *Storage) SaveAssetBatch(metas []domain.AssetMetadata) error {
	if len(metas) == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	for _, meta := range metas {
		data, err := sonic.Marshal(assetToStored(meta))
		if err != nil {
			return fmt.Errorf("failed to marshal asset %s: %w", meta.AssetID, err)
		}

		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(AssetsBucket),
			Key:    []byte(meta.AssetID.String()),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			return fmt.Errorf("failed to add asset %s to batch: %w", meta.AssetID, err)
		}
	}

	if err := batch.Execute(); err != nil {
		log.Error().Err(err).Int("count", len(metas)).Msg("[previewStorage] FAILED to execute asset batch")
		return err
	}

	log.Info().Int("count", len(metas)).Msg("[previewStorage] saved asset batch")
	return nil
}

func (s *Storage) LoadAllAssets() ([]domain.AssetMetadata, error) {
	data, err := s.db.List(AssetsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	metas := make([]domain.AssetMetadata, 0, len(data))
	failed := 0

	for key, value := range data {
		var stored StoredAssetMetadata
		if err := sonic.Unmarshal(value, &stored); err != nil {
			log.Error().Str("assetId", key).Err(err).Msg("[previewStorage] failed to unmarshal asset, skipping")
			failed++
			continue
		}

		meta, err := storedToAsset(&stored)
		if err != nil {
			log.Error().Str("assetId", key).Err(err).Msg("[previewStorage] failed to convert stored asset, skipping")
			failed++
			continue
		}

		metas = append(metas, meta)
	}

	if failed > 0 {
		log.Error().
			Int("total_in_db", len(data)).
			Int("loaded", len(metas)).
			Int("failed", failed).
			Msg("[previewStorage] asset loading completed with errors")
	} else {
		log.Info().
			Int("total_in_db", len(data)).
			Int("loaded", len(metas)).
			Msg("[previewStorage] asset loading completed successfully")
	}

	return metas, nil
}

func (s *Storage) SavePoolSnapshot(state *domain.PoolState) error {
	stored := poolToStored(state)
	data, err := sonic.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal pool snapshot: %w", err)
	}

	return s.db.Set(PoolSnapshotsBucket, []byte(state.ID.String()), data)
}

func (s *Storage) SavePoolSnapshotBatch(states []*domain.PoolState) error {
	if len(states) == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	for _, state := range states {
		data, err := sonic.Marshal(poolToStored(state))
		if err != nil {
			return fmt.Errorf("failed to marshal pool snapshot %s: %w", state.ID, err)
		}

		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(PoolSnapshotsBucket),
			Key:    []byte(state.ID.String()),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			return fmt.Errorf("failed to add pool snapshot %s to batch: %w", state.ID, err)
		}
	}

	if err := batch.Execute(); err != nil {
		log.Error().Err(err).Int("count", len(states)).Msg("[previewStorage] FAILED to execute snapshot batch")
		return err
	}

	log.Info().Int("count", len(states)).Msg("[previewStorage] saved pool snapshot batch")
	return nil
}

func (s *Storage) LoadAllPoolSnapshots() ([]*domain.PoolState, error) {
	data, err := s.db.List(PoolSnapshotsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list pool snapshots: %w", err)
	}

	states := make([]*domain.PoolState, 0, len(data))
	for key, value := range data {
		var stored StoredPoolSnapshot
		if err := sonic.Unmarshal(value, &stored); err != nil {
			log.Warn().Str("pool", key).Err(err).Msg("[previewStorage] failed to unmarshal pool snapshot, skipping")
			continue
		}

		state, err := storedToPool(&stored)
		if err != nil {
			log.Warn().Str("pool", key).Err(err).Msg("[previewStorage] invalid pool snapshot, skipping")
			continue
		}

		states = append(states, state)
	}

	return states, nil
}

func (s *Storage) GetAssetCount() (int, error) {
	data, err := s.db.List(AssetsBucket)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

func assetToStored(meta domain.AssetMetadata) *StoredAssetMetadata {
	return &StoredAssetMetadata{
		AssetID:  meta.AssetID.String(),
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
		Name:     meta.Name,
	}
}

func storedToAsset(stored *StoredAssetMetadata) (domain.AssetMetadata, error) {
	id, err := domain.AssetIDFromHex(stored.AssetID)
	if err != nil {
		return domain.AssetMetadata{}, fmt.Errorf("invalid assetId: %w", err)
	}

	return domain.AssetMetadata{
		AssetID:  id,
		Symbol:   stored.Symbol,
		Decimals: stored.Decimals,
		Name:     stored.Name,
	}, nil
}

func poolToStored(state *domain.PoolState) *StoredPoolSnapshot {
	reserve0 := "0"
	reserve1 := "0"
	if state.Reserve0 != nil {
		reserve0 = state.Reserve0.String()
	}
	if state.Reserve1 != nil {
		reserve1 = state.Reserve1.String()
	}

	return &StoredPoolSnapshot{
		AssetA:        state.ID.AssetA.String(),
		AssetB:        state.ID.AssetB.String(),
		Stable:        state.ID.Stable,
		Reserve0:      reserve0,
		Reserve1:      reserve1,
		FeeBps:        state.FeeBps,
		Amplification: state.Amplification,
	}
}

func storedToPool(stored *StoredPoolSnapshot) (*domain.PoolState, error) {
	assetA, err := domain.AssetIDFromHex(stored.AssetA)
	if err != nil {
		return nil, fmt.Errorf("invalid assetA: %w", err)
	}
	assetB, err := domain.AssetIDFromHex(stored.AssetB)
	if err != nil {
		return nil, fmt.Errorf("invalid assetB: %w", err)
	}

	reserve0 := new(big.Int)
	reserve0.SetString(stored.Reserve0, 10)

	reserve1 := new(big.Int)
	reserve1.SetString(stored.Reserve1, 10)

	return &domain.PoolState{
		ID:            domain.NewPoolID(assetA, assetB, stored.Stable),
		Reserve0:      reserve0,
		Reserve1:      reserve1,
		FeeBps:        stored.FeeBps,
		Amplification: stored.Amplification,
	}, nil
}
