package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
)

// OriginPolicy decides which browser origins may call the API.
type OriginPolicy struct {
	AllowedOrigins []string
	HasExplicit    bool // an allow-list was configured, even if empty
	DeployEnv      string
	PreviewSuffix  string
}

func NewOriginPolicy(allowed []string, deployEnv, previewSuffix string) OriginPolicy {
	if previewSuffix == "" {
		previewSuffix = ".vercel.app"
	}
	return OriginPolicy{
		AllowedOrigins: allowed,
		HasExplicit:    len(allowed) > 0,
		DeployEnv:      deployEnv,
		PreviewSuffix:  previewSuffix,
	}
}

// Allowed applies the rules in order; the first one that matches decides.
func (p OriginPolicy) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	for _, allowed := range p.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}

	host := strings.ToLower(u.Hostname())

	if p.DeployEnv == "preview" || p.DeployEnv == "development" {
		suffix := p.PreviewSuffix
		if suffix == "" {
			suffix = ".vercel.app"
		}
		if u.Scheme == "https" && strings.HasSuffix(host, suffix) {
			return true
		}
	}

	if p.DeployEnv == "" && !p.HasExplicit {
		if host == "localhost" || host == "127.0.0.1" || strings.HasSuffix(host, ".localhost") {
			return true
		}
	}

	return false
}

// CORS answers preflights itself and decorates every other response for
// allowed origins. It must run before rate limiting so that preflights are
// never counted and 429s still carry the headers.
func CORS(policy OriginPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if policy.Allowed(origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
