// Package cors answers cross-origin requests for the JSON API.
package cors

import (
	"net/http"
	"strconv"
	"strings"
)

// Config lists what cross-origin callers may do
type Config struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// DefaultConfig allows every origin
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:         600,
	}
}

// Middleware sets the CORS headers and short-circuits preflight requests
type Middleware struct {
	config    Config
	anyOrigin bool
	origins   map[string]bool
}

// New creates the CORS middleware
func New(config Config) *Middleware {
	m := &Middleware{config: config, origins: map[string]bool{}}
	for _, o := range config.AllowedOrigins {
		if o == "*" {
			m.anyOrigin = true
		}
		m.origins[o] = true
	}
	return m
}

// Middleware returns the HTTP middleware function
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		headers := w.Header()
		headers.Add("Vary", "Origin")

		allowed := m.allowOrigin(origin)
		if allowed != "" {
			headers.Set("Access-Control-Allow-Origin", allowed)
			headers.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allowed != "" {
				headers.Set("Access-Control-Allow-Methods", strings.Join(m.config.AllowedMethods, ", "))
				// Echo requested headers so clients may send any of them
				if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					headers.Set("Access-Control-Allow-Headers", reqHeaders)
				} else {
					headers.Set("Access-Control-Allow-Headers", strings.Join(m.config.AllowedHeaders, ", "))
				}
				if m.config.MaxAge > 0 {
					headers.Set("Access-Control-Max-Age", strconv.Itoa(m.config.MaxAge))
				}
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) allowOrigin(origin string) string {
	if m.anyOrigin {
		return "*"
	}
	if origin != "" && m.origins[origin] {
		return origin
	}
	return ""
}
