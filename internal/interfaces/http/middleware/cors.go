package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig controls which cross-origin callers the API accepts.
// An empty AllowOrigins list refuses every cross-origin request, so
// deployments must list their frontends explicitly.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// CORSWithConfig returns the CORS middleware for the given configuration.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.AllowOrigins))
	wildcard := false
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = true
	}

	// Header values never change per request, join them once.
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(int(cfg.MaxAge.Seconds()))
	}

	apply := func(c *gin.Context, origin string) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", headers)
		if cfg.AllowCredentials && origin != "*" {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if expose != "" {
			h.Set("Access-Control-Expose-Headers", expose)
		}
		if maxAge != "" {
			h.Set("Access-Control-Max-Age", maxAge)
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		grant := ""
		switch {
		case wildcard:
			grant = "*"
		case allowed[origin] && origin != "":
			grant = origin
		}

		// Preflights are always answered with 204 so browsers do not
		// surface a 404; headers are only granted to known origins.
		if c.Request.Method == http.MethodOptions {
			if grant != "" {
				apply(c, grant)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if grant != "" {
			apply(c, grant)
		}
		c.Next()
	}
}
