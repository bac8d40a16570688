package security

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin access for browser front-ends.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// DefaultCORSConfig allows any origin to read and post transactions with any
// request header. A "*" header entry echoes Access-Control-Request-Headers.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	}
}

// CORS answers preflight requests and decorates responses for allowed origins.
type CORS struct {
	config     CORSConfig
	wildcard   bool
	anyHeaders bool
	origins    map[string]struct{}
}

// NewCORS creates the middleware. An empty origin list falls back to the defaults.
func NewCORS(config CORSConfig) *CORS {
	def := DefaultCORSConfig()
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = def.AllowedOrigins
	}
	if len(config.AllowedMethods) == 0 {
		config.AllowedMethods = def.AllowedMethods
	}
	if len(config.AllowedHeaders) == 0 {
		config.AllowedHeaders = def.AllowedHeaders
	}

	c := &CORS{config: config, origins: make(map[string]struct{})}
	c.anyHeaders = slices.Contains(config.AllowedHeaders, "*")
	for _, o := range config.AllowedOrigins {
		if o == "*" {
			c.wildcard = true
			continue
		}
		c.origins[strings.TrimRight(o, "/")] = struct{}{}
	}
	return c
}

// Allowed reports whether a browser origin may call the API.
func (c *CORS) Allowed(origin string) bool {
	if c.wildcard {
		return true
	}
	_, ok := c.origins[strings.TrimRight(origin, "/")]
	return ok
}

// Middleware returns the HTTP middleware function
func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Add("Vary", "Origin")
		if !c.Allowed(origin) {
			if isPreflight(r) {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if c.wildcard {
			headers.Set("Access-Control-Allow-Origin", "*")
		} else {
			headers.Set("Access-Control-Allow-Origin", origin)
		}
		headers.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")

		if isPreflight(r) {
			headers.Set("Access-Control-Allow-Methods", strings.Join(c.config.AllowedMethods, ", "))
			if c.anyHeaders {
				headers.Add("Vary", "Access-Control-Request-Headers")
				if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
					headers.Set("Access-Control-Allow-Headers", requested)
				}
			} else {
				headers.Set("Access-Control-Allow-Headers", strings.Join(c.config.AllowedHeaders, ", "))
			}
			if c.config.MaxAge > 0 {
				headers.Set("Access-Control-Max-Age", strconv.Itoa(c.config.MaxAge))
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}
