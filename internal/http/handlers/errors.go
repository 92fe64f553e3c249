// HTTP error codes shared by every endpoint.
//
// Codes are lowercase snake_case and stable: clients branch on them, so a
// code never changes meaning once shipped. Generic codes mirror HTTP status
// semantics; operation codes pin a server-side failure to one endpoint
// action. Every error response pairs a status with exactly one code via
// fail() in response.go, e.g.
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "message": "pet was modified concurrently"
//	}

package handlers

const (
	// Generic codes, aligned with their HTTP status.
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// ErrCodeRateLimited mirrors the 429 body written by the rate-limit
	// middleware, which cannot import this package.
	ErrCodeRateLimited = "rate_limited"

	// Operation codes for failures of one endpoint action.
	ErrCodeCreateFailed   = "create_failed"
	ErrCodeListFailed     = "list_failed"
	ErrCodeUpdateFailed   = "update_failed"
	ErrCodeDeleteFailed   = "delete_failed"
	ErrCodeInteractFailed = "interact_failed"
)
