package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLoggerKey is the key under which the per-request logger is stored
const RequestLoggerKey = "request_logger"

// Logger logs one line per request. Server errors are logged at ERROR and
// client errors at WARN. Handlers reach the request-scoped logger through
// GetLogger.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		correlationID := GetCorrelationID(c)

		requestLogger := logger
		if correlationID != "" {
			requestLogger = logger.With("correlation_id", correlationID)
		}
		c.Set(RequestLoggerKey, requestLogger)

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method

		if raw != "" {
			path = path + "?" + raw
		}

		level := slog.LevelInfo
		switch {
		case statusCode >= 500:
			level = slog.LevelError
		case statusCode >= 400:
			level = slog.LevelWarn
		}

		requestLogger.Log(c.Request.Context(), level, "HTTP request",
			"method", method,
			"path", path,
			"route", c.FullPath(),
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
			"user_agent", c.Request.UserAgent(),
		)
	}
}

// GetLogger returns the request-scoped logger, or fallback outside the Logger middleware
func GetLogger(c *gin.Context, fallback *slog.Logger) *slog.Logger {
	if l, exists := c.Get(RequestLoggerKey); exists {
		if requestLogger, ok := l.(*slog.Logger); ok {
			return requestLogger
		}
	}
	return fallback
}
