// Interaction HTTP handlers.
//
// This file exposes REST endpoints for pet interactions:
//   - POST /pets/{id}/feedings    (feed the pet)
//   - POST /pets/{id}/playtimes   (play with the pet)
//   - POST /pets/{id}/scoldings   (scold the pet)
//   - GET  /pets/{id}/feedings    (list feeding events)
//   - GET  /pets/{id}/playtimes   (list playtime events)
//   - GET  /pets/{id}/scoldings   (list scolding events)
//
// All three interaction kinds share one code path; only the kind differs.
// A dead pet answers interaction attempts with a plain-text notice and is
// never mutated.
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (pet, kind, key), the handler returns that recorded
// event and sets `Idempotency-Replayed: true`.
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-tamagotchi-backend/internal/domain"
	"github.com/tbourn/go-tamagotchi-backend/internal/http/middleware"
	"github.com/tbourn/go-tamagotchi-backend/internal/repo"
	"github.com/tbourn/go-tamagotchi-backend/internal/services"
	"github.com/tbourn/go-tamagotchi-backend/internal/utils"
)

// deadPetNotice is the exact plain-text body returned when an interaction
// targets a dead pet. Clients match on this string, so it must not change.
const deadPetNotice = "This pet is dead!"

//
// Shared endpoint cores
//

// interact runs one interaction of the given kind against the pet addressed by
// the path id. Both the replay and the store leg of idempotency live here so
// each wrapper stays a one-liner.
func (h *Handlers) interact(c *gin.Context, kind domain.InteractionKind) {
	ctx := c.Request.Context()

	petID, okID := petIDParam(c)
	if !okID {
		return
	}

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middlewareGetIdempotencyKey(c)
	if idemKey != "" {
		if svc, okSvc := h.intSvc.(*services.InteractionService); okSvc && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, petID, kind, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetInteraction(ctx, svc.DB, kind, rec.EventID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusOK, prev)
					return
				}
			}
		}
	}

	ev, err := h.intSvc.Interact(ctx, petID, kind)
	if err != nil {
		switch err {
		case services.ErrPetNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "pet not found")
		case services.ErrPetDead:
			c.String(http.StatusOK, deadPetNotice)
		case services.ErrUpdateConflict:
			fail(c, http.StatusInternalServerError, ErrCodeConflict, "pet was modified concurrently")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInteractFailed, err.Error())
		}
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, okSvc := h.intSvc.(*services.InteractionService); okSvc && svc.DB != nil {
			ttl := h.IdempotencyTTL
			if ttl <= 0 {
				ttl = 24 * time.Hour
			}
			_, _ = repo.CreateIdempotency(ctx, svc.DB, petID, kind, idemKey, ev.ID, http.StatusOK, ttl)
		}
	}

	ok(c, http.StatusOK, ev)
}

// listEvents returns the pet's event history for one kind, oldest first.
// An optional ?limit=N caps the result to the first N events.
func (h *Handlers) listEvents(c *gin.Context, kind domain.InteractionKind) {
	ctx := c.Request.Context()

	petID, okID := petIDParam(c)
	if !okID {
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 0)

	// ETag pre-check (best effort). Truncated listings must not share the
	// full listing's ETag, so the pre-check only runs without a limit.
	var db *gorm.DB
	if svc, okSvc := h.intSvc.(*services.InteractionService); okSvc {
		db = svc.DB
	}
	if db != nil && limit <= 0 {
		count, maxTS, err := repo.InteractionsStats(ctx, db, kind, petID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"%ss:%d:%d:%d"`, kind, petID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	events, err := h.intSvc.ListEvents(ctx, petID, kind)
	if err != nil {
		switch err {
		case services.ErrPetNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "pet not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	ok(c, http.StatusOK, events)
}

//
// Handlers
//

// FeedPet godoc
// @ID          feedPet
// @Summary     Feed a pet
// @Description Feeds the pet: hunger -5, happiness +3, last-interaction stamped now.
// @Description A dead pet is not mutated; the response is then the plain text "This pet is dead!".
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Interactions
// @Produce     json
//
// @Param       id               path    int     true  "Pet ID"  example(1)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
//
// @Success     200  {object}  domain.InteractionEvent  "Created feeding event (or dead-pet notice as text/plain)"
// @Failure     400  {object}  handlers.ErrorResponse   "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse   "Pet not found"
// @Failure     500  {object}  handlers.ErrorResponse   "Conflict or internal error"
// @Router      /pets/{id}/feedings [post]
func (h *Handlers) FeedPet(c *gin.Context) {
	h.interact(c, domain.KindFeeding)
}

// PlayWithPet godoc
// @ID          playWithPet
// @Summary     Play with a pet
// @Description Plays with the pet: hunger +3, happiness +5, last-interaction stamped now.
// @Description A dead pet is not mutated; the response is then the plain text "This pet is dead!".
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Interactions
// @Produce     json
//
// @Param       id               path    int     true  "Pet ID"  example(1)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
//
// @Success     200  {object}  domain.InteractionEvent  "Created playtime event (or dead-pet notice as text/plain)"
// @Failure     400  {object}  handlers.ErrorResponse   "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse   "Pet not found"
// @Failure     500  {object}  handlers.ErrorResponse   "Conflict or internal error"
// @Router      /pets/{id}/playtimes [post]
func (h *Handlers) PlayWithPet(c *gin.Context) {
	h.interact(c, domain.KindPlaytime)
}

// ScoldPet godoc
// @ID          scoldPet
// @Summary     Scold a pet
// @Description Scolds the pet: happiness -5, last-interaction stamped now.
// @Description A dead pet is not mutated; the response is then the plain text "This pet is dead!".
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Interactions
// @Produce     json
//
// @Param       id               path    int     true  "Pet ID"  example(1)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
//
// @Success     200  {object}  domain.InteractionEvent  "Created scolding event (or dead-pet notice as text/plain)"
// @Failure     400  {object}  handlers.ErrorResponse   "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse   "Pet not found"
// @Failure     500  {object}  handlers.ErrorResponse   "Conflict or internal error"
// @Router      /pets/{id}/scoldings [post]
func (h *Handlers) ScoldPet(c *gin.Context) {
	h.interact(c, domain.KindScolding)
}

// ListFeedings godoc
// @ID          listFeedings
// @Summary     List feeding events
// @Description Returns all feeding events for the pet, oldest first.
// @Tags        Interactions
// @Produce     json
//
// @Param       id     path   int  true   "Pet ID"  example(1)
// @Param       limit  query  int  false  "Maximum number of events to return"  example(50)
//
// @Success     200  {array}   domain.InteractionEvent
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Pet not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /pets/{id}/feedings [get]
func (h *Handlers) ListFeedings(c *gin.Context) {
	h.listEvents(c, domain.KindFeeding)
}

// ListPlaytimes godoc
// @ID          listPlaytimes
// @Summary     List playtime events
// @Description Returns all playtime events for the pet, oldest first.
// @Tags        Interactions
// @Produce     json
//
// @Param       id     path   int  true   "Pet ID"  example(1)
// @Param       limit  query  int  false  "Maximum number of events to return"  example(50)
//
// @Success     200  {array}   domain.InteractionEvent
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Pet not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /pets/{id}/playtimes [get]
func (h *Handlers) ListPlaytimes(c *gin.Context) {
	h.listEvents(c, domain.KindPlaytime)
}

// ListScoldings godoc
// @ID          listScoldings
// @Summary     List scolding events
// @Description Returns all scolding events for the pet, oldest first.
// @Tags        Interactions
// @Produce     json
//
// @Param       id     path   int  true   "Pet ID"  example(1)
// @Param       limit  query  int  false  "Maximum number of events to return"  example(50)
//
// @Success     200  {array}   domain.InteractionEvent
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Pet not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /pets/{id}/scoldings [get]
func (h *Handlers) ListScoldings(c *gin.Context) {
	h.listEvents(c, domain.KindScolding)
}

// middlewareGetIdempotencyKey returns the request's idempotency key, if any.
// A key stashed by the idempotency middleware wins because it has already
// passed validation; without that middleware the raw header is used as-is.
func middlewareGetIdempotencyKey(c *gin.Context) (string, bool) {
	if k, okKey := middleware.GetIdempotencyKey(c); okKey {
		return k, true
	}
	if v := strings.TrimSpace(c.GetHeader("Idempotency-Key")); v != "" {
		return v, true
	}
	return "", false
}
