// Package services – PetService
//
// This file implements the PetService, which manages the lifecycle of pets.
// It normalizes names, applies the server-side defaults that creation forces
// onto every new pet, and coordinates repository operations for listing,
// fetching, replacing, and deleting pets. Liveness is never stored: every pet
// leaving this service has its IsDead flag recomputed against the current
// clock.
//
// Service-level errors (e.g., ErrPetNotFound, ErrPetIDMismatch) are returned
// for predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-tamagotchi-backend/internal/domain"
)

// PetRepo defines the repository contract required by PetService.
// Implementations are responsible for persistence of pet aggregates.
type PetRepo interface {
	// CreatePet inserts a new pet row, assigning its ID.
	CreatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) error

	// ListPets returns all pets ordered by id ascending.
	ListPets(ctx context.Context, db *gorm.DB) ([]domain.Pet, error)

	// GetPet fetches a pet by ID.
	GetPet(ctx context.Context, db *gorm.DB, id uint) (*domain.Pet, error)

	// UpdatePet overwrites a pet row conditionally on its version token and
	// reports how many rows matched.
	UpdatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) (int64, error)

	// DeletePet removes a pet by ID and reports how many rows were deleted.
	DeletePet(ctx context.Context, db *gorm.DB, id uint) (int64, error)
}

// PetService provides pet-level CRUD operations. It owns the creation
// defaults and the derived liveness of every pet it returns.
type PetService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the pet repository used by this service.
	Repo PetRepo

	// Now supplies the current instant for timestamps and the death rule.
	// Tests may pin it; when nil, time.Now is used.
	Now func() time.Time
}

// NewPetService constructs a PetService backed by the given handle and repo.
func NewPetService(db *gorm.DB, r PetRepo) *PetService {
	return &PetService{DB: db, Repo: r, Now: time.Now}
}

// now returns the service clock in UTC, falling back to the wall clock.
func (s *PetService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create inserts a new pet with the given name. Creation forces the server
// defaults regardless of anything else the client sent: hunger 0, happiness 0,
// birthday and last-interaction stamped with the current instant.
func (s *PetService) Create(ctx context.Context, name string) (*domain.Pet, error) {
	now := s.now()
	p := &domain.Pet{
		Name:                   strings.TrimSpace(name),
		Birthday:               now,
		LastInteractedWithDate: now,
	}
	if err := s.Repo.CreatePet(ctx, s.DB, p); err != nil {
		return nil, err
	}
	p.IsDead = domain.IsDead(p, now)
	return p, nil
}

// List returns all pets ordered by id ascending, each with IsDead recomputed
// against the current clock.
func (s *PetService) List(ctx context.Context) ([]domain.Pet, error) {
	pets, err := s.Repo.ListPets(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range pets {
		pets[i].IsDead = domain.IsDead(&pets[i], now)
	}
	return pets, nil
}

// Get fetches a single pet by id with IsDead recomputed.
func (s *PetService) Get(ctx context.Context, id uint) (*domain.Pet, error) {
	p, err := s.Repo.GetPet(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, err
	}
	p.IsDead = domain.IsDead(p, s.now())
	return p, nil
}

// Replace overwrites the pet addressed by id with the client-supplied
// representation. The body must carry the same id as the path; a mismatch is
// rejected before any storage access. The write is conditional on the
// representation's version token: a stale token that matches zero rows is
// re-checked and classified as either not-found (row vanished) or a fatal
// conflict (row still present). A body without a version token updates
// unconditionally.
func (s *PetService) Replace(ctx context.Context, id uint, in *domain.Pet) (*domain.Pet, error) {
	if in.ID != id {
		return nil, ErrPetIDMismatch
	}

	p := &domain.Pet{
		ID:                     id,
		Name:                   strings.TrimSpace(in.Name),
		Birthday:               in.Birthday,
		HungerLevel:            in.HungerLevel,
		HappinessLevel:         in.HappinessLevel,
		LastInteractedWithDate: in.LastInteractedWithDate,
		Version:                in.Version,
	}

	rows, err := s.Repo.UpdatePet(ctx, s.DB, p)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Zero rows means either the pet is gone or another writer bumped the
		// version first. Re-check existence to tell the two apart.
		if _, err := s.Repo.GetPet(ctx, s.DB, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPetNotFound
			}
			return nil, err
		}
		updateConflicts.Inc()
		return nil, ErrUpdateConflict
	}

	// Reload so the caller sees the stored row (bumped version, audit stamp).
	fresh, err := s.Repo.GetPet(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, err
	}
	fresh.IsDead = domain.IsDead(fresh, s.now())
	return fresh, nil
}

// Delete removes the pet addressed by id and returns its prior state.
// Deleting an absent pet, including the second delete of the same id, is
// not-found.
func (s *PetService) Delete(ctx context.Context, id uint) (*domain.Pet, error) {
	prior, err := s.Repo.GetPet(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, err
	}

	rows, err := s.Repo.DeletePet(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Raced with another delete.
		return nil, ErrPetNotFound
	}

	prior.IsDead = domain.IsDead(prior, s.now())
	return prior, nil
}
