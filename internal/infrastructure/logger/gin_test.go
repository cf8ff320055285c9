package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupGinRouter(logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware(logger))
	return router
}

func TestGinMiddlewareLogsRequest(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	router := setupGinRouter(logger)
	router.GET("/clients", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/clients?page=2", nil)
	router.ServeHTTP(w, req)

	entries := logs.All()
	require.Len(t, entries, 1)

	entry := entries[0]
	fields := entry.ContextMap()
	assert.Equal(t, "HTTP Request", entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/clients", fields["path"])
	assert.Equal(t, "page=2", fields["query"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestGinMiddlewareLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected zapcore.Level
	}{
		{"success logs info", http.StatusOK, zapcore.InfoLevel},
		{"client error logs warn", http.StatusNotFound, zapcore.WarnLevel},
		{"server error logs error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			router := setupGinRouter(zap.New(core))
			router.GET("/status", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.expected, entries[0].Level)
		})
	}
}

func TestGinMiddlewareStoresLogger(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	router := setupGinRouter(zap.New(core))

	var handlerLogger *zap.Logger
	router.GET("/ping", func(c *gin.Context) {
		handlerLogger = GetGinLogger(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotNil(t, handlerLogger)
}

func TestGetGinLoggerFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	logger := GetGinLogger(c)

	require.NotNil(t, logger)
	logger.Info("ignored")
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(logger))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Panic recovered", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}
