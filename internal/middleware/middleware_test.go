package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ashwinyue/tool-catalog/internal/logger"
	"github.com/ashwinyue/tool-catalog/internal/metrics"
	"github.com/ashwinyue/tool-catalog/internal/service/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	claims := &auth.Claims{Role: "admin"}
	claims.Subject = "root"
	return claims, nil
}

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestRequireAdmin(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireAdmin(stubValidator{}), func(c *gin.Context) {
		admin, _ := GetAdmin(c)
		c.String(http.StatusOK, admin)
	})

	tests := []struct {
		name   string
		header string
		want   int
		body   string
	}{
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", want: http.StatusOK, body: "root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	log, logs := observedLogger()
	r := gin.New()
	r.Use(RecoveryMiddleware(log))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestLoggingMiddleware(t *testing.T) {
	log, logs := observedLogger()
	r := gin.New()
	r.Use(LoggingMiddleware(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, 1, logs.FilterMessage("request").Len())
	entry := logs.FilterMessage("request").All()[0]
	assert.Equal(t, "/ok", entry.ContextMap()["path"])
	assert.Equal(t, "x=1", entry.ContextMap()["query"])
	assert.Equal(t, 1, logs.FilterMessage("request rejected").Len())
}

func TestMetricsMiddleware(t *testing.T) {
	registry := prometheus.NewRegistry()
	r := gin.New()
	r.Use(MetricsMiddleware(metrics.New(registry)))
	r.GET("/tools/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tools/abc", nil))

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	labels := families[0].GetMetric()[0].GetLabel()
	got := map[string]string{}
	for _, l := range labels {
		got[l.GetName()] = l.GetValue()
	}
	assert.Equal(t, "/tools/:id", got["route"])
	assert.Equal(t, "200", got["status"])
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
