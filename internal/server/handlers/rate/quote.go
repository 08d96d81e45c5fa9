package rate

import (
	"github.com/gin-gonic/gin"

	"oip/ratesync/internal/business/rating"
	"oip/ratesync/internal/server/ginx"
)

// Quote godoc
// @Summary      多承运商询价
// @Description  并发询价后返回成功报价、失败承运商以及最便宜/最快/推荐选择
// @Tags         rates
// @Accept       json
// @Produce      json
// @Param        request body QuoteRequest true "询价请求"
// @Success      200 {object} ginx.Response{data=rating.QuoteResult} "询价成功"
// @Failure      400 {object} ginx.Response "参数错误"
// @Failure      502 {object} ginx.Response "全部承运商失败"
// @Failure      504 {object} ginx.Response "询价超时"
// @Router       /rates/quote [post]
func (h *RateHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	ctx := c.Request.Context()
	carrierIDs, err := h.resolveCarriers(ctx, req.CarrierIDs, req.Shipment)
	if err != nil {
		h.logger.Errorf(ctx, "[RateHandler] resolve carriers failed: %v", err)
		ginx.InternalError(c, "load carrier catalog failed")
		return
	}

	result, err := h.service.Quote(ctx, req.Shipment, carrierIDs, rating.RateOptions{Timeout: h.timeout(req.TimeoutMS)})
	if err != nil {
		h.logger.Warnf(ctx, "[RateHandler] quote failed: %v", err)
		ginx.RatingError(c, err)
		return
	}

	ginx.Success(c, result)
}
