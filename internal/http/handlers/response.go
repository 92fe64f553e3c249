// Package handlers implements the HTTP endpoints of the pet API.
//
// Responses come in two shapes. Successes serialize the domain value directly
// (a pet, an interaction event, or a list of either). Failures always use the
// ErrorResponse envelope with a stable machine-readable code from errors.go,
// so clients can branch on `code` without parsing prose:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "pet not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tamagotchi-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope shared by every endpoint. RequestID
// echoes the X-Request-ID response header so a client report can be matched
// to server logs; Code is one of the errors.go constants; Message is safe to
// surface to users.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"pet not found"`
}

// ok writes body as JSON with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// fail aborts the request with an ErrorResponse. Server-side failures (5xx)
// are additionally logged through the request-scoped logger, so every 500 in
// the log carries the request id and route fields alongside the code.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail exposes fail to other packages; the router uses it for its NoRoute
// and NoMethod fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }
