package routers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oip/ratesync/internal/server/handlers/rate"
	"oip/ratesync/internal/server/middlewares"
	"oip/ratesync/pkg/logger"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(rateHandler *rate.RateHandler, log logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.ErrorHandler(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "ratesync",
			"message": "Service is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		rates := v1.Group("/rates")
		{
			rates.POST("/validate", rateHandler.Validate)
			rates.POST("/quote", rateHandler.Quote)
			rates.POST("/carriers/:carrier_id", rateHandler.RateCarrier)
			rates.POST("/jobs", rateHandler.SubmitJob)
		}
	}

	return r
}
