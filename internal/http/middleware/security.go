// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, which stamps a conservative set of
// hardening headers onto every response of the JSON API. The service is
// expected to sit behind a reverse proxy, so HTTPS detection honors
// X-Forwarded-Proto and HSTS is strictly opt-in: emitting it on plain HTTP
// deployments would poison browsers against the host.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the headers emitted by SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security, but only on requests that
	// actually arrived over HTTPS. Enable it only when traffic is TLS
	// end-to-end, proxy hop included.
	EnableHSTS bool
	// HSTSMaxAge is the HSTS lifetime; values <= 0 fall back to 180 days.
	HSTSMaxAge time.Duration
	// NoStore adds Cache-Control: no-store (plus the legacy Pragma/Expires
	// pair) for deployments where responses must never be cached.
	NoStore bool
	// EnablePolicy adds browser feature policies (Permissions-Policy and
	// X-Permitted-Cross-Domain-Policies). Harmless for non-browser clients.
	EnablePolicy bool
}

// SecurityHeaders returns middleware that applies opt.
//
// Unconditionally set:
//
//	X-Content-Type-Options: nosniff
//	X-Frame-Options: DENY
//	Referrer-Policy: no-referrer
//
// The remaining headers follow the options: feature policies, cache
// suppression, and HSTS (HTTPS requests only). When an X-Request-ID header
// is already on the response, it is appended to
// Access-Control-Expose-Headers so browser clients can read it back for
// support tickets.
//
// No Content-Security-Policy is sent: the API serves JSON, not HTML.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 180 * 24 * time.Hour
	}
	// The value never varies per request, so render it once.
	hstsValue := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		if rid := h.Get("X-Request-ID"); rid != "" {
			exposeRequestID(h)
		}

		c.Next()
	}
}

// exposeRequestID appends X-Request-ID to Access-Control-Expose-Headers
// without clobbering values another middleware already exposed.
func exposeRequestID(h http.Header) {
	const hdr = "Access-Control-Expose-Headers"
	cur := h.Get(hdr)
	switch {
	case cur == "":
		h.Set(hdr, "X-Request-ID")
	case !strings.Contains(cur, "X-Request-ID"):
		h.Set(hdr, cur+", X-Request-ID")
	}
}

// isHTTPS reports whether the request used HTTPS, either terminated here
// (r.TLS set) or at a proxy that recorded X-Forwarded-Proto.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
