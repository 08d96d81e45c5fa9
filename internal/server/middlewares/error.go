package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oip/ratesync/internal/server/ginx"
	"oip/ratesync/pkg/logger"
)

// ErrorHandler 统一错误处理中间件
// 捕获 panic 和 handler 通过 c.Error 上报但未写响应的错误
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "[ErrorHandler] panic: %v", r)
				c.Abort()
				ginx.InternalError(c, http.StatusText(http.StatusInternalServerError))
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			log.Errorf(c.Request.Context(), "[ErrorHandler] unhandled error: %v", err.Err)
			ginx.RatingError(c, err.Err)
		}
	}
}
