package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yeisme/wikiviews/pkg/internal/handle"
)

func TestRegister_DefaultHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	e := gin.New()
	handle.LoadTemplates(e)

	got := Register(&e.RouterGroup, nil)
	RegisterHealthCheckRoute(&e.RouterGroup, nil)
	RegisterNoRoute(e)

	assert.IsType(t, handle.DefaultHandlers{}, got)

	cases := map[string]int{
		"/":                          http.StatusOK,
		"/most_viewed_articles":      http.StatusNotImplemented,
		"/article_view_count/Cat":    http.StatusNotImplemented,
		"/most_views_day/Cat":        http.StatusNotImplemented,
		"/health":                    http.StatusOK,
		"/definitely/not/registered": http.StatusNotFound,
	}

	for path, code := range cases {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, code, w.Code, path)
	}
}
