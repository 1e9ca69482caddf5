package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/wikiviews/pkg/configs"
)

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := configs.MetricsConfig{Enabled: true, Path: "/metrics"}
	require.NoError(t, InitMetrics(cfg))
	// 重复初始化不报错
	require.NoError(t, InitMetrics(cfg))

	UpstreamRequests.WithLabelValues("top", "200").Inc()
	BreakerState.Set(0)

	e := gin.New()
	require.NoError(t, StartMetricsServer(cfg, e))

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `wikimedia_requests_total{kind="top",status="200"}`)
	assert.Contains(t, w.Body.String(), "wikimedia_circuit_breaker_state")
}

func TestMetricsDisabled(t *testing.T) {
	e := gin.New()
	require.NoError(t, StartMetricsServer(configs.MetricsConfig{}, e))

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsInvalidPath(t *testing.T) {
	e := gin.New()

	err := StartMetricsServer(configs.MetricsConfig{Enabled: true, Path: "metrics"}, e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must begin with '/'")
}
