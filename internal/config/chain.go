package config

import (
	"errors"
	"os"
	"time"

	"github.com/andrew-solarstorm/go-packages/common"
)

type ChainConfig struct {
	// NodeURL is the read-only AMM state endpoint of the chain node.
	NodeURL string

	// IndexerURL serves asset metadata lookups.
	IndexerURL string

	// ReadTimeout bounds a single pool-state read.
	ReadTimeout time.Duration
}

func (c *ChainConfig) Key() string {
	return CHAIN_CONFIG_KEY
}

func (c *ChainConfig) Load() error {
	c.NodeURL = os.Getenv("CHAIN_NODE_URL")
	c.IndexerURL = os.Getenv("INDEXER_URL")
	c.ReadTimeout = time.Duration(common.GetEnvOrDefaultInt("CHAIN_READ_TIMEOUT_MS", 5_000)) * time.Millisecond
	return nil
}

func (c *ChainConfig) Validate() error {
	if c.NodeURL == "" || c.IndexerURL == "" {
		return errors.New("invalid chain config: CHAIN_NODE_URL and INDEXER_URL are required")
	}
	return nil
}
