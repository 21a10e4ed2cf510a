package middleware

import (
	"net/http"
	"time"

	"pantry-recommender/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// accessFieldsKey handler 附加到存取日誌的欄位
const accessFieldsKey = "access_log_fields"

// AnnotateLog 讓 handler 將推薦相關欄位（餐別、結果數、是否命中快取）附加到本次請求的存取日誌
func AnnotateLog(c *gin.Context, fields ...zap.Field) {
	if existing, ok := c.Get(accessFieldsKey); ok {
		if prev, ok := existing.([]zap.Field); ok {
			fields = append(prev, fields...)
		}
	}
	c.Set(accessFieldsKey, fields)
}

// Logger 存取日誌中間件，需放在 requestid 之後
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []zap.Field{
			zap.String("request_id", requestid.Get(c)),
			zap.String("route", route),
			zap.String("method", c.Request.Method),
			zap.Int("status", status),
			zap.Int64("request_bytes", c.Request.ContentLength),
			zap.Int("response_bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if v, ok := c.Get(accessFieldsKey); ok {
			if extra, ok := v.([]zap.Field); ok {
				fields = append(fields, extra...)
			}
		}
		if last := c.Errors.Last(); last != nil {
			ce := common.AsCustomError(last.Err)
			fields = append(fields, zap.String("error_code", ce.Code), zap.String("error", last.Error()))
		}

		switch {
		case status >= 500:
			common.LogError("推薦服務錯誤", fields...)
		case status == http.StatusTooManyRequests:
			common.LogWarn("請求遭限流或重複", fields...)
		case status >= 400:
			common.LogWarn("請求無效", fields...)
		default:
			common.LogInfo("請求完成", fields...)
		}
	}
}

// Recovery 恢復中間件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				common.LogError("請求處理 panic",
					zap.Any("panic", err),
					zap.String("route", c.FullPath()),
					zap.String("method", c.Request.Method),
					zap.String("request_id", requestid.Get(c)),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, common.ErrInternalError.ToResponse(false))
			}
		}()

		c.Next()
	}
}
