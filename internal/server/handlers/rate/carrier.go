package rate

import (
	"github.com/gin-gonic/gin"

	"oip/ratesync/internal/business/rating"
	"oip/ratesync/internal/server/ginx"
)

// RateCarrier 单承运商询价
// POST /api/v1/rates/carriers/:carrier_id
func (h *RateHandler) RateCarrier(c *gin.Context) {
	carrierID := c.Param("carrier_id")
	if carrierID == "" {
		ginx.BadRequest(c, "carrier_id required")
		return
	}

	var body ShipmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	ctx := c.Request.Context()
	quote, err := h.service.RateOneCarrier(ctx, carrierID, rating.NormalizeShipment(body.Shipment))
	if err != nil {
		h.logger.Warnf(ctx, "[RateHandler] rate carrier %s failed: %v", carrierID, err)
		ginx.RatingError(c, err)
		return
	}

	ginx.Success(c, quote)
}
