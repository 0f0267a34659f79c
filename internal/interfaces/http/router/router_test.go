package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// registrarFunc adapts a function to the RouteRegistrar interface
type registrarFunc func(rg *gin.RouterGroup)

func (f registrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRouterMountsUnderAPIPrefix(t *testing.T) {
	engine := gin.New()

	NewRouter(engine).Register(registrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/orders/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})
	})).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/orders/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	// The bare path is not mounted
	w = serve(engine, http.MethodGet, "/orders/ping")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterRegisterChains(t *testing.T) {
	engine := gin.New()

	NewRouter(engine).
		Register(registrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/orders", func(c *gin.Context) { c.String(http.StatusOK, "orders") })
		})).
		Register(registrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/issues", func(c *gin.Context) { c.String(http.StatusOK, "issues") })
		})).
		Setup()

	w := serve(engine, http.MethodGet, "/api/v1/orders")
	assert.Equal(t, "orders", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/issues")
	assert.Equal(t, "issues", w.Body.String())
}
