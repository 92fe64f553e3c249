// Pet HTTP handlers.
//
// This file exposes REST endpoints for pet resources:
//   - GET    /pets        (list, ETag support)
//   - POST   /pets        (create)
//   - GET    /pets/{id}   (fetch)
//   - PUT    /pets/{id}   (replace)
//   - DELETE /pets/{id}   (delete, returns prior state)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/plugin/optimisticlock"

	"github.com/tbourn/go-tamagotchi-backend/internal/domain"
	"github.com/tbourn/go-tamagotchi-backend/internal/repo"
	"github.com/tbourn/go-tamagotchi-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// PetService defines pet lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PetService interface {
	// Create inserts a new pet with server-forced defaults.
	Create(ctx context.Context, name string) (*domain.Pet, error)
	// List returns all pets ordered by id ascending.
	List(ctx context.Context) ([]domain.Pet, error)
	// Get fetches a pet by id.
	Get(ctx context.Context, id uint) (*domain.Pet, error)
	// Replace overwrites the pet addressed by id with the given representation.
	Replace(ctx context.Context, id uint, in *domain.Pet) (*domain.Pet, error)
	// Delete removes a pet and returns its prior state.
	Delete(ctx context.Context, id uint) (*domain.Pet, error)
}

// InteractionService defines the interaction engine consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type InteractionService interface {
	// Interact applies one interaction of the given kind to a pet.
	Interact(ctx context.Context, petID uint, kind domain.InteractionKind) (*domain.InteractionEvent, error)
	// ListEvents returns all events of the given kind for a pet.
	ListEvents(ctx context.Context, petID uint, kind domain.InteractionKind) ([]domain.InteractionEvent, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for pets and their interactions.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	petSvc PetService
	intSvc InteractionService

	// IdempotencyTTL bounds how long a recorded interaction outcome keeps
	// answering replays of its Idempotency-Key. Zero falls back to 24h.
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(petSvc PetService, intSvc InteractionService) *Handlers {
	return &Handlers{petSvc: petSvc, intSvc: intSvc}
}

//
// DTOs
//

// CreatePetRequest is the JSON payload for creating a pet. Only the name is
// client-ownable at creation; stats and timestamps are forced server-side.
type CreatePetRequest struct {
	// Name labels the new pet; it is trimmed but otherwise stored as-is.
	Name string `json:"name" example:"Momo"`
}

// ReplacePetRequest is the JSON payload for replacing a pet. It carries the
// full representation, including the resource id, which must match the path.
type ReplacePetRequest struct {
	ID                     uint                   `json:"id" example:"1"`
	Name                   string                 `json:"name" example:"Momo"`
	Birthday               time.Time              `json:"birthday" example:"2026-08-01T12:00:00Z"`
	HungerLevel            int                    `json:"hunger_level" example:"10"`
	HappinessLevel         int                    `json:"happiness_level" example:"-3"`
	LastInteractedWithDate time.Time              `json:"last_interacted_with_date" example:"2026-08-02T09:30:00Z"`
	Version                optimisticlock.Version `json:"version" swaggertype:"integer" example:"3"`
}

//
// Helpers
//

// petIDParam parses the :id path parameter. Anything that is not a
// non-negative integer is rejected with 400 before storage is touched.
func petIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "pet id must be an integer")
		return 0, false
	}
	return uint(id), true
}

//
// Handlers
//

// ListPets godoc
// @ID          listPets
// @Summary     List pets
// @Description Returns every pet ordered by id ascending, each with its derived liveness.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Pets
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"pets:3:1754040000\")
//
// @Success     200  {array}  domain.Pet
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets [get]
func (h *Handlers) ListPets(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okSvc := h.petSvc.(*services.PetService); okSvc {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.PetsStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"pets:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	pets, err := h.petSvc.List(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, pets)
}

// GetPet godoc
// @ID          getPet
// @Summary     Fetch a pet
// @Description Returns a single pet by id with its derived liveness.
// @Tags        Pets
// @Produce     json
//
// @Param       id  path  int  true  "Pet ID"  example(1)
//
// @Success     200  {object} domain.Pet
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/{id} [get]
func (h *Handlers) GetPet(c *gin.Context) {
	id, okID := petIDParam(c)
	if !okID {
		return
	}

	pet, err := h.petSvc.Get(c.Request.Context(), id)
	if err != nil {
		switch err {
		case services.ErrPetNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "pet not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, pet)
}

// CreatePet godoc
// @ID          createPet
// @Summary     Create a new pet
// @Description Creates a pet with server-forced defaults (zeroed stats, birthday and
// @Description last-interaction stamped now) and returns the stored resource.
// @Tags        Pets
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreatePetRequest  true  "Create pet payload"
//
// @Success     201  {object} domain.Pet
// @Header      201  {string} Location  "URL of the created pet"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets [post]
func (h *Handlers) CreatePet(c *gin.Context) {
	var req CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	pet, err := h.petSvc.Create(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}

	c.Header("Location", fmt.Sprintf("%s/%d", strings.TrimRight(c.Request.URL.Path, "/"), pet.ID))
	ok(c, http.StatusCreated, pet)
}

// ReplacePet godoc
// @ID          replacePet
// @Summary     Replace a pet
// @Description Overwrites the pet addressed by the path id with the supplied full
// @Description representation. The body id must match the path id. When the body carries
// @Description a version token, the write is conditional and a stale token is a conflict.
// @Tags        Pets
// @Accept      json
// @Produce     json
//
// @Param       id    path  int                         true  "Pet ID"  example(1)
// @Param       body  body  handlers.ReplacePetRequest  true  "Full pet representation"
//
// @Success     200  {object} domain.Pet
// @Failure     400  {object} handlers.ErrorResponse "Bad request / id mismatch"
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     500  {object} handlers.ErrorResponse "Conflict or internal error"
// @Router      /pets/{id} [put]
func (h *Handlers) ReplacePet(c *gin.Context) {
	id, okID := petIDParam(c)
	if !okID {
		return
	}

	var req ReplacePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	in := &domain.Pet{
		ID:                     req.ID,
		Name:                   req.Name,
		Birthday:               req.Birthday,
		HungerLevel:            req.HungerLevel,
		HappinessLevel:         req.HappinessLevel,
		LastInteractedWithDate: req.LastInteractedWithDate,
		Version:                req.Version,
	}

	pet, err := h.petSvc.Replace(c.Request.Context(), id, in)
	if err != nil {
		switch err {
		case services.ErrPetIDMismatch:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body id must match path id")
		case services.ErrPetNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "pet not found")
		case services.ErrUpdateConflict:
			fail(c, http.StatusInternalServerError, ErrCodeConflict, "pet was modified concurrently")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, pet)
}

// DeletePet godoc
// @ID          deletePet
// @Summary     Delete a pet
// @Description Removes the pet and returns its prior state. Event histories are
// @Description removed with it.
// @Tags        Pets
// @Produce     json
//
// @Param       id  path  int  true  "Pet ID"  example(1)
//
// @Success     200  {object} domain.Pet "Prior state of the deleted pet"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/{id} [delete]
func (h *Handlers) DeletePet(c *gin.Context) {
	id, okID := petIDParam(c)
	if !okID {
		return
	}

	prior, err := h.petSvc.Delete(c.Request.Context(), id)
	if err != nil {
		switch err {
		case services.ErrPetNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "pet not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, prior)
}
