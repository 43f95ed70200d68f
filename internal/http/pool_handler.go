package http

import (
	"github.com/gin-gonic/gin"

	"github.com/meridianswap/preview-engine/internal/domain"
	"github.com/meridianswap/preview-engine/internal/engine"
	"github.com/meridianswap/preview-engine/internal/http/httputil"
)

type PoolHandler struct {
	engineSvc *engine.Service
}

func NewPoolHandler(engineSvc *engine.Service) *PoolHandler {
	return &PoolHandler{engineSvc: engineSvc}
}

func (h *PoolHandler) Root() string {
	return "/pool"
}

func (h *PoolHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getPoolState)
}

type PoolStateRequest struct {
	AssetA string `form:"assetA" binding:"required"`
	AssetB string `form:"assetB" binding:"required"`
	Stable bool   `form:"stable"`
}

type PoolStateResponse struct {
	AssetA        string `json:"assetA"`
	AssetB        string `json:"assetB"`
	Stable        bool   `json:"stable"`
	Reserve0      string `json:"reserve0"`
	Reserve1      string `json:"reserve1"`
	FeeBps        uint16 `json:"feeBps"`
	Amplification uint64 `json:"amplification,omitempty"`
}

// @Summary Get pool state
// @Description Read the live reserves of one pool. The pair is canonicalized, so
// @Description asset order in the query does not matter.
// @Tags pool
// @Produce json
// @Param assetA query string true "First asset id (0x-prefixed 32-byte hex)"
// @Param assetB query string true "Second asset id (0x-prefixed 32-byte hex)"
// @Param stable query bool false "Stable pool instead of the volatile one" default(false)
// @Success 200 {object} PoolStateResponse "Live pool reserves"
// @Failure 400 {object} map[string]string "Malformed asset id"
// @Failure 404 {object} map[string]string "Pool does not exist"
// @Router /api/v1/pool [get]
func (h *PoolHandler) getPoolState(c *gin.Context) {
	var req PoolStateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	assetA, err := domain.AssetIDFromHex(req.AssetA)
	if err != nil {
		httputil.BadRequest(c, "invalid assetA id")
		return
	}
	assetB, err := domain.AssetIDFromHex(req.AssetB)
	if err != nil {
		httputil.BadRequest(c, "invalid assetB id")
		return
	}
	if assetA == assetB {
		httputil.BadRequest(c, "assetA and assetB must differ")
		return
	}

	id := domain.NewPoolID(assetA, assetB, req.Stable)
	st, err := h.engineSvc.PoolState(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	httputil.Success(c, PoolStateResponse{
		AssetA:        st.ID.AssetA.String(),
		AssetB:        st.ID.AssetB.String(),
		Stable:        st.ID.Stable,
		Reserve0:      st.Reserve0.String(),
		Reserve1:      st.Reserve1.String(),
		FeeBps:        st.FeeBps,
		Amplification: st.Amplification,
	})
}
