package rate

import (
	"github.com/gin-gonic/gin"

	"oip/ratesync/internal/business/rating"
	"oip/ratesync/internal/server/ginx"
)

// Validate 校验货件
// POST /api/v1/rates/validate
// 表单先标准化再校验；不合法也返回 200，由 is_valid 区分
func (h *RateHandler) Validate(c *gin.Context) {
	var body ShipmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	req := rating.NormalizeShipment(body.Shipment)
	result := h.service.ValidateShipment(&req)

	ginx.Success(c, ValidateResponse{ValidationResult: result, Request: req})
}
