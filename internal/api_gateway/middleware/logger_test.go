package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("LogsRequestDetails", func(t *testing.T) {
		var logBuffer bytes.Buffer
		testLogger := slog.New(slog.NewJSONHandler(&logBuffer, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		router := gin.New()
		router.Use(CorrelationID())
		router.Use(Logger(testLogger))

		router.GET("/test_log", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})

		req, _ := http.NewRequest(http.MethodGet, "/test_log?param=value", nil)
		req.Header.Set("User-Agent", "test-agent")
		testCorrelationID := uuid.New().String()
		req.Header.Set(CorrelationIDHeader, testCorrelationID)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		logOutput := logBuffer.String()
		assert.NotEmpty(t, logOutput, "Log output should not be empty")

		assert.Contains(t, logOutput, `"level":"INFO"`)
		assert.Contains(t, logOutput, `"msg":"HTTP request"`)
		assert.Contains(t, logOutput, `"method":"GET"`)
		assert.Contains(t, logOutput, `"path":"/test_log?param=value"`)
		assert.Contains(t, logOutput, `"status":200`)
		assert.Contains(t, logOutput, `"latency":`)
		assert.Contains(t, logOutput, `"client_ip":`)
		assert.Contains(t, logOutput, `"user_agent":"test-agent"`)
		assert.Contains(t, logOutput, `"correlation_id":"`+testCorrelationID+`"`)
	})

	t.Run("LevelFollowsStatus", func(t *testing.T) {
		tests := []struct {
			status int
			level  string
		}{
			{http.StatusCreated, `"level":"INFO"`},
			{http.StatusNotFound, `"level":"WARN"`},
			{http.StatusServiceUnavailable, `"level":"ERROR"`},
		}

		for _, tt := range tests {
			var logBuffer bytes.Buffer
			testLogger := slog.New(slog.NewJSONHandler(&logBuffer, nil))

			router := gin.New()
			router.Use(CorrelationID())
			router.Use(Logger(testLogger))
			router.POST("/cards/:id", func(c *gin.Context) {
				c.Status(tt.status)
			})

			req, _ := http.NewRequest(http.MethodPost, "/cards/abc", strings.NewReader("body"))
			router.ServeHTTP(httptest.NewRecorder(), req)

			logOutput := logBuffer.String()
			assert.Contains(t, logOutput, tt.level)
			assert.Contains(t, logOutput, `"route":"/cards/:id"`)
			assert.Contains(t, logOutput, `"correlation_id":`)
		}
	})
}

func TestGetLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var logBuffer bytes.Buffer
	testLogger := slog.New(slog.NewJSONHandler(&logBuffer, nil))

	router := gin.New()
	router.Use(CorrelationID())
	router.Use(Logger(testLogger))
	router.GET("/scoped", func(c *gin.Context) {
		GetLogger(c, slog.Default()).Info("inside handler")
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/scoped", nil)
	req.Header.Set(CorrelationIDHeader, "corr-scoped")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, logBuffer.String(), `"msg":"inside handler","correlation_id":"corr-scoped"`)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, testLogger, GetLogger(c, testLogger))
}
