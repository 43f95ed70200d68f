package http

import (
	"github.com/gin-gonic/gin"

	"github.com/meridianswap/preview-engine/internal/domain"
	"github.com/meridianswap/preview-engine/internal/engine"
	"github.com/meridianswap/preview-engine/internal/http/httputil"
)

type AssetHandler struct {
	engineSvc *engine.Service
}

func NewAssetHandler(engineSvc *engine.Service) *AssetHandler {
	return &AssetHandler{engineSvc: engineSvc}
}

func (h *AssetHandler) Root() string {
	return "/asset"
}

func (h *AssetHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/:id", h.getAsset)
}

type AssetResponse struct {
	AssetID  string `json:"assetId"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Name     string `json:"name"`
}

// @Summary Get asset metadata
// @Description Look up symbol, name and decimal precision for one asset.
// @Tags asset
// @Produce json
// @Param id path string true "Asset id (0x-prefixed 32-byte hex)"
// @Success 200 {object} AssetResponse "Asset metadata"
// @Failure 400 {object} map[string]string "Malformed asset id"
// @Failure 404 {object} map[string]string "Asset not known to the indexer"
// @Router /api/v1/asset/{id} [get]
func (h *AssetHandler) getAsset(c *gin.Context) {
	id, err := domain.AssetIDFromHex(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid asset id")
		return
	}

	meta, err := h.engineSvc.AssetMetadata(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	httputil.Success(c, AssetResponse{
		AssetID:  meta.AssetID.String(),
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
		Name:     meta.Name,
	})
}
