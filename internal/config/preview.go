package config

import (
	"errors"
	"time"

	"github.com/andrew-solarstorm/go-packages/common"
)

type PreviewConfig struct {
	// DebounceQuiet is the quiet interval applied to keystroke-rate input
	// before a normalization/query cycle fires. Default: 250ms
	DebounceQuiet time.Duration

	// RefreshTTL is how long a resolved preview stays fresh before a silent
	// background re-query. Default: 15s
	RefreshTTL time.Duration

	// DefaultSlippageBps is applied when the caller omits a slippage
	// tolerance. Default: 50 (0.50%)
	DefaultSlippageBps uint16

	// SnapshotDBPath is the BoltDB file for asset metadata and last-known
	// pool snapshots. Default: "./data/preview-engine.db"
	SnapshotDBPath string

	// SnapshotsEnabled controls whether metadata/pool snapshots are persisted.
	// Default: true
	SnapshotsEnabled bool
}

func (c *PreviewConfig) Key() string {
	return PREVIEW_CONFIG_KEY
}

func (c *PreviewConfig) Load() error {
	c.DebounceQuiet = time.Duration(common.GetEnvOrDefaultInt("PREVIEW_DEBOUNCE_MS", 250)) * time.Millisecond
	c.RefreshTTL = time.Duration(common.GetEnvOrDefaultInt("PREVIEW_REFRESH_TTL_MS", 15_000)) * time.Millisecond
	c.DefaultSlippageBps = uint16(common.GetEnvOrDefaultInt("PREVIEW_DEFAULT_SLIPPAGE_BPS", 50))
	c.SnapshotDBPath = common.GetEnvOrDefault("PREVIEW_SNAPSHOT_DB_PATH", "./data/preview-engine.db")
	c.SnapshotsEnabled = common.GetEnvOrDefault("PREVIEW_SNAPSHOTS_ENABLED", "true") == "true"
	return c.Validate()
}

func (c *PreviewConfig) Validate() error {
	if c.DebounceQuiet < 100*time.Millisecond || c.DebounceQuiet > 500*time.Millisecond {
		return errors.New("invalid preview config: debounce quiet interval must be 100-500ms")
	}
	if c.RefreshTTL <= 0 {
		return errors.New("invalid preview config: refresh TTL must be positive")
	}
	return nil
}
