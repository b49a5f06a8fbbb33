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

// registrarFunc lets a plain function stand in for a handler.
type registrarFunc func(rg *gin.RouterGroup)

func (f registrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

func textRoute(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()

	NewRouter(engine).
		Register(registrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/students/roster", textRoute("roster"))
		})).
		Register(registrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/academic-years/current", textRoute("current year"))
		})).
		Setup()

	w := get(engine, "/api/v1/students/roster")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "roster", w.Body.String())

	w = get(engine, "/api/v1/academic-years/current")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "current year", w.Body.String())

	w = get(engine, "/students/roster")
	assert.Equal(t, http.StatusNotFound, w.Code, "routes live under the version prefix only")
}

func TestRouter_WithAPIVersion(t *testing.T) {
	engine := gin.New()

	NewRouter(engine, WithAPIVersion("v2")).
		Register(registrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/students", textRoute("students"))
		})).
		Setup()

	assert.Equal(t, http.StatusOK, get(engine, "/api/v2/students").Code)
	assert.Equal(t, http.StatusNotFound, get(engine, "/api/v1/students").Code)
}

func TestRouter_UseScopesMiddlewareToAPIGroup(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", textRoute("ok"))

	NewRouter(engine).
		Use(func(c *gin.Context) {
			c.Header("X-API-Middleware", "applied")
			c.Next()
		}).
		Register(registrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/students", textRoute("students"))
		})).
		Setup()

	w := get(engine, "/api/v1/students")
	assert.Equal(t, "applied", w.Header().Get("X-API-Middleware"))

	w = get(engine, "/health")
	assert.Empty(t, w.Header().Get("X-API-Middleware"))
}

func TestRouter_SetupWithoutRegistrars(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Setup()

	assert.Equal(t, http.StatusNotFound, get(engine, "/api/v1/anything").Code)
}
