package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/meridianswap/preview-engine/internal/common"
	"github.com/meridianswap/preview-engine/internal/domain"
	"github.com/meridianswap/preview-engine/internal/http/httputil"
)

// domainHTTPError maps engine sentinel errors onto HTTP errors. Unknown
// errors become 500s without leaking internals beyond the message.
func domainHTTPError(err error) *common.HttpError {
	switch {
	case errors.Is(err, domain.ErrSameAsset):
		return common.HTTPErrorBadRequest("sell and buy must differ")
	case errors.Is(err, domain.ErrInvalidAmount):
		return common.HTTPErrorBadRequest("invalid amount")
	case errors.Is(err, domain.ErrUnknownAsset):
		return common.HTTPErrorNotFound("unknown asset: " + err.Error())
	case errors.Is(err, domain.ErrPoolNotFound):
		return common.HTTPErrorNotFound("pool not found: " + err.Error())
	case errors.Is(err, domain.ErrInsufficientLiquidity):
		return common.HTTPErrorNotFound("insufficient liquidity: " + err.Error())
	case errors.Is(err, domain.ErrNoRoute):
		return common.HTTPErrorNotFound("no route found: " + err.Error())
	case errors.Is(err, domain.ErrInvalidRoute):
		return common.HTTPErrorUnprocessable("invalid route: " + err.Error())
	default:
		return common.HTTPErrorInternalError(err.Error())
	}
}

func writeDomainError(c *gin.Context, err error) {
	he := domainHTTPError(err)
	httputil.Error(c, he.StatusCode, he.Message)
}
