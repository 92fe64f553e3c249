// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file gives the interaction POSTs idempotency support. Clients that
// retry a feeding, playtime, or scolding can send an Idempotency-Key header;
// the middleware validates it, stashes it in the request context, and flags
// requests whose key already has a recorded outcome so the handler can
// replay the stored event instead of applying the interaction twice.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client-chosen retry token. The same
// semantic operation must reuse the same value for deduplication to work.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys for idempotency state; read through the accessors below.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: a stored outcome exists
	ctxKeyRateBypass = "rate.bypass" // bool: skip rate limiting
)

// GetIdempotencyKey returns the validated key stashed by
// IdempotencyValidator, with ok=false when the request carried none.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request's key already has a recorded outcome
// for its pet and interaction kind. Handlers serve the stored event instead
// of re-applying deltas when this is true.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions tunes header validation. TTL enforcement lives in the
// lookup, which owns the persistence.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. Nil selects a conservative
	// token alphabet: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a still-valid outcome exists for
// (petID, kind, key) at now. petID and kind arrive as raw strings taken from
// the request path and route shape; parsing belongs to the implementation.
// Lookup errors should read as "no replay" rather than failing the request.
type IdempotencyLookup func(ctx context.Context, petID, kind, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present and
// stashes it for the handlers. With a lookup wired in, a key that already
// has a recorded outcome additionally sets the replay and rate-bypass flags.
//
// Requests without the header pass through untouched. A malformed key stops
// the request with 400 before it reaches the handler; everything else
// continues, replay or not, because serving the stored event is the
// handler's job, not the middleware's.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			petID := c.Param("id") // the POST /pets/:id/<kind>s routes all bind :id
			kind := kindFromRoute(c.FullPath())
			now := time.Now().UTC()

			if exists, _ := lookup(c.Request.Context(), petID, kind, key, now); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// kindFromRoute maps a registered route pattern to the interaction kind its
// idempotency records are scoped to. Non-interaction routes yield "".
func kindFromRoute(routePath string) string {
	switch {
	case strings.HasSuffix(routePath, "/feedings"):
		return "feeding"
	case strings.HasSuffix(routePath, "/playtimes"):
		return "playtime"
	case strings.HasSuffix(routePath, "/scoldings"):
		return "scolding"
	}
	return ""
}
