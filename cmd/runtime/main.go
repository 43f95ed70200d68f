package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/meridianswap/preview-engine/internal/common"
	"github.com/meridianswap/preview-engine/internal/config"
	"github.com/meridianswap/preview-engine/internal/engine"
	"github.com/meridianswap/preview-engine/internal/http"
)

// @title Meridian Preview Engine API
// @version 1.0
// @description Swap route resolution and trade-preview engine for the Meridian AMM.
// @description
// @description ## - Features
// @description - **Route Resolution**: Remote path-finder with automatic on-chain fallback
// @description - **Live Previews**: Constant-product and stable-swap pricing on current reserves
// @description - **Slippage Protection**: Integer basis-point bounds, rounding never in the user's favor
// @description - **Input Normalization**: Whole-asset decimal input normalized to base units, truncation never rounds up
// @description - **Cache-Aware Delivery**: Sharded preview cache with TTL matching the refresh window
// @description
// @description ## - Usage Tips
// @description - Asset ids are 0x-prefixed 32-byte hex strings
// @description - Amounts on /preview are whole-asset units exactly as typed ("1.5")
// @description - Default slippage is 50 bps (0.5%)
// @description - Rate limit: 10 requests/second (burst: 20)
//
// @BasePath /
// @schemes https http
// @tag.name preview
// @tag.description Resolve a pair and amount into a priced swap preview with slippage bounds
// @tag.name pool
// @tag.description Read live pool reserves
// @tag.name asset
// @tag.description Look up asset metadata

func main() {
	// Runtime tuning for the quoting hot path (GOGC, GOMAXPROCS, GOMEMLIMIT)
	common.InitRuntimeForQuoting()

	// load env
	err := godotenv.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load env")
		return
	}

	// di container config
	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.RouteFinderConfig{},
		&config.ChainConfig{},
		&config.PreviewConfig{},
	)

	// di container
	dic, err := container.New(
		conf,

		&engine.Service{},
		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	// Run() waits for SIGINT/SIGTERM
	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
