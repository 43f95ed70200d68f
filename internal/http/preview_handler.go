package http

import (
	"github.com/gin-gonic/gin"

	"github.com/meridianswap/preview-engine/internal/amounts"
	"github.com/meridianswap/preview-engine/internal/assets"
	"github.com/meridianswap/preview-engine/internal/domain"
	"github.com/meridianswap/preview-engine/internal/engine"
	"github.com/meridianswap/preview-engine/internal/http/httputil"
	"github.com/meridianswap/preview-engine/internal/pricing"
)

type PreviewHandler struct {
	engineSvc *engine.Service
}

func NewPreviewHandler(engineSvc *engine.Service) *PreviewHandler {
	return &PreviewHandler{engineSvc: engineSvc}
}

func (h *PreviewHandler) Root() string {
	return "/preview"
}

func (h *PreviewHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getPreview)
}

// PreviewRequest represents the parameters for requesting a swap preview
type PreviewRequest struct {
	// Sell asset identifier (0x-prefixed 32-byte hex)
	Sell string `form:"sell" binding:"required"`

	// Buy asset identifier (0x-prefixed 32-byte hex)
	Buy string `form:"buy" binding:"required"`

	// Amount as the user typed it, in whole-asset units ("1.5", "0.001").
	// Interpreted against the decimals of the side selected by tradeType.
	Amount string `form:"amount" binding:"required"`

	// Trade type: ExactInput (amount is what you sell) or ExactOutput
	// (amount is what you want to receive)
	TradeType string `form:"tradeType" binding:"required" enums:"ExactInput,ExactOutput"`

	// Slippage tolerance in basis points (1 bps = 0.01%). Default from config.
	SlippageBps uint16 `form:"slippageBps"`
}

// RouteHopInfo describes one pool hop of the resolved route
type RouteHopInfo struct {
	AssetA string `json:"assetA"`
	AssetB string `json:"assetB"`
	Stable bool   `json:"stable"`
}

// PreviewResponse contains the resolved preview with slippage bounds
type PreviewResponse struct {
	Sell       string `json:"sell"`
	Buy        string `json:"buy"`
	SellSymbol string `json:"sellSymbol"`
	BuySymbol  string `json:"buySymbol"`

	// Base-unit amounts. For ExactInput amountOut is the estimate; for
	// ExactOutput amountIn is the estimate.
	AmountIn  string `json:"amountIn"`
	AmountOut string `json:"amountOut"`

	TradeType string `json:"tradeType"`

	// Where the route came from: "remote" or "onchain"
	Source string `json:"source"`

	// Slippage-adjusted execution bounds
	MinimumOut string `json:"minimumOut"`
	MaximumIn  string `json:"maximumIn"`

	SlippageBps uint16 `json:"slippageBps"`

	Route    []RouteHopInfo `json:"route"`
	HopCount int            `json:"hopCount"`
}

// @Summary Get swap preview
// @Description Resolve a sell/buy pair and a raw amount into a priced swap preview.
// @Description The engine queries the remote route finder first and falls back to
// @Description on-chain pricing against the pair's default pool when no path is available.
// @Description
// @Description The amount is given in whole-asset units exactly as typed; the engine
// @Description normalizes it against the decimals of the side selected by tradeType.
// @Tags preview
// @Produce json
// @Param sell query string true "Sell asset id (0x-prefixed 32-byte hex)"
// @Param buy query string true "Buy asset id (0x-prefixed 32-byte hex)"
// @Param amount query string true "Amount in whole-asset units" example("1.5")
// @Param tradeType query string true "ExactInput or ExactOutput" Enums(ExactInput, ExactOutput)
// @Param slippageBps query int false "Slippage tolerance in basis points. Default from config" example(50)
// @Success 200 {object} PreviewResponse "Resolved preview with slippage bounds"
// @Failure 400 {object} map[string]string "Malformed asset id, amount or trade type"
// @Failure 404 {object} map[string]string "Unknown asset, no route, or insufficient liquidity"
// @Router /api/v1/preview [get]
func (h *PreviewHandler) getPreview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	sell, err := domain.AssetIDFromHex(req.Sell)
	if err != nil {
		httputil.BadRequest(c, "invalid sell asset id")
		return
	}
	buy, err := domain.AssetIDFromHex(req.Buy)
	if err != nil {
		httputil.BadRequest(c, "invalid buy asset id")
		return
	}

	tradeType, err := domain.ParseTradeType(req.TradeType)
	if err != nil {
		httputil.BadRequest(c, "invalid tradeType: must be ExactInput or ExactOutput")
		return
	}

	pair, err := h.engineSvc.ResolvePair(c.Request.Context(), sell, buy)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	decimals := pair.SellDecimals
	if tradeType == domain.TradeExactOutput {
		decimals = pair.BuyDecimals
	}
	amount, ok := amounts.Normalize(req.Amount, decimals)
	if !ok || amount.Sign() == 0 {
		httputil.BadRequest(c, "invalid amount: must be a positive decimal number")
		return
	}

	slippageBps := req.SlippageBps
	if slippageBps == 0 {
		slippageBps = h.engineSvc.DefaultSlippageBps()
	}

	p, err := h.engineSvc.PreviewOnce(c.Request.Context(), pair, amount, tradeType)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	httputil.Success(c, buildPreviewResponse(pair, p, slippageBps))
}

func buildPreviewResponse(pair *assets.ResolvedPair, p *domain.SwapPreview, slippageBps uint16) PreviewResponse {
	route := make([]RouteHopInfo, 0, len(p.Route))
	for _, hop := range p.Route {
		route = append(route, RouteHopInfo{
			AssetA: hop.AssetA.String(),
			AssetB: hop.AssetB.String(),
			Stable: hop.Stable,
		})
	}

	return PreviewResponse{
		Sell:        pair.Sell.String(),
		Buy:         pair.Buy.String(),
		SellSymbol:  pair.SellSymbol,
		BuySymbol:   pair.BuySymbol,
		AmountIn:    p.AmountIn.String(),
		AmountOut:   p.AmountOut.String(),
		TradeType:   p.TradeType.String(),
		Source:      string(p.Source),
		MinimumOut:  pricing.MinimumOut(p.AmountOut, slippageBps).String(),
		MaximumIn:   pricing.MaximumIn(p.AmountIn, slippageBps).String(),
		SlippageBps: slippageBps,
		Route:       route,
		HopCount:    len(p.Route),
	}
}
