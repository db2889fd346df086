// Package security sets response headers for the JSON API.
package security

import (
	"fmt"
	"net/http"
)

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	CSP string

	// HSTS is only sent over TLS.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CrossOriginResource string
	CacheControl        string
}

// DefaultHeadersConfig returns headers for an API that serves no documents.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                   "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		XFrameOptions:         "DENY",
		XContentTypeOptions:   "nosniff",
		ReferrerPolicy:        "no-referrer",
		CrossOriginResource:   "same-origin",
		CacheControl:          "no-store",
	}
}

// Headers returns middleware applying config to every response.
func Headers(config HeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apply(w.Header(), config, r.TLS != nil)
			next.ServeHTTP(w, r)
		})
	}
}

func apply(headers http.Header, c HeadersConfig, tls bool) {
	set := func(k, v string) {
		if v != "" {
			headers.Set(k, v)
		}
	}
	set("Content-Security-Policy", c.CSP)
	set("X-Frame-Options", c.XFrameOptions)
	set("X-Content-Type-Options", c.XContentTypeOptions)
	set("Referrer-Policy", c.ReferrerPolicy)
	set("Cross-Origin-Resource-Policy", c.CrossOriginResource)
	set("Cache-Control", c.CacheControl)

	if tls && c.HSTSMaxAge > 0 {
		hsts := fmt.Sprintf("max-age=%d", c.HSTSMaxAge)
		if c.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		headers.Set("Strict-Transport-Security", hsts)
	}
}
