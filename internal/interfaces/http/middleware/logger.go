// internal/interfaces/http/middleware/logger.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger logs every HTTP request through the process logger
func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health"},
		Formatter: func(param gin.LogFormatterParams) string {
			entry := log.WithFields(logrus.Fields{
				"request_id":    param.Keys[ctxRequestID],
				"method":        param.Method,
				"path":          param.Path,
				"status_code":   param.StatusCode,
				"latency_ms":    param.Latency.Milliseconds(),
				"client_ip":     param.ClientIP,
				"user_agent":    param.Request.UserAgent(),
				"response_size": param.BodySize,
				"timestamp":     param.TimeStamp.Format(time.RFC3339),
			})

			// Add error if present
			if param.ErrorMessage != "" {
				entry = entry.WithField("error", param.ErrorMessage)
			}

			// Log based on status code
			switch {
			case param.StatusCode >= 500:
				entry.Error("HTTP request completed with server error")
			case param.StatusCode >= 400:
				entry.Warn("HTTP request completed with client error")
			default:
				entry.Info("HTTP request completed")
			}

			return ""
		},
	})
}
