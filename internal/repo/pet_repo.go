// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Pet model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a pet is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//   - UpdatePet and DeletePet report "no row matched" through their
//     rows-affected return instead of an error; the caller decides whether
//     that means missing or stale (see services.PetService).
//
// Functions:
//
//   - CreatePet(ctx, db, pet) -> error
//     Inserts a fully built Pet row; the database assigns the integer id.
//
//   - ListPets(ctx, db) -> []domain.Pet, error
//     Returns every pet ordered by id ascending.
//
//   - GetPet(ctx, db, id) -> *domain.Pet, error
//     Fetches a single pet by id, or ErrNotFound if missing.
//
//   - UpdatePet(ctx, db, pet) -> (rowsAffected, error)
//     Writes every column of the pet conditionally on its version token.
//     A stale token or a vanished row both match zero rows.
//
//   - DeletePet(ctx, db, id) -> (rowsAffected, error)
//     Hard-deletes the pet; event rows follow via FK cascade.
//
// Usage:
//
//	// Within a service layer
//	pet, err := repo.GetPet(ctx, db, id)
//	if errors.Is(err, repo.ErrNotFound) {
//	    // handle missing
//	} else if err != nil {
//	    // handle DB failure
//	}
//
// This repository is designed to be wrapped by a higher-level service
// (see services.PetService) which enforces the lifecycle rules, derived
// death state, and conflict classification.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-tamagotchi-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePet inserts the given pet. The caller builds the record (name,
// birthday, stat defaults); the database assigns the autoincrement id and
// the optimisticlock plugin seeds the version token.
//
// On success the pet's ID field is populated. On failure, it returns a DB error.
func CreatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) error {
	return db.WithContext(ctx).Create(p).Error
}

// ListPets returns all pets ordered by id ascending. It returns an empty
// slice if no pets exist. On DB error, it returns the error.
func ListPets(ctx context.Context, db *gorm.DB) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// GetPet fetches a single pet by its id. If the record does not exist, it
// returns ErrNotFound. On other DB errors, the raw error is returned.
func GetPet(ctx context.Context, db *gorm.DB, id uint) (*domain.Pet, error) {
	var p domain.Pet
	err := db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePet overwrites every persisted column of the pet identified by
// p.ID, including zero-valued stats. The write is conditional: when p
// carries a valid version token the optimisticlock plugin appends
// "AND version = ?" to the UPDATE, so a stale token matches zero rows. A
// pet without a token updates unconditionally (last write wins).
//
// It returns the number of rows the UPDATE matched; zero means the row is
// missing or the token was stale, and the caller re-checks existence to
// tell the two apart.
func UpdatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) (int64, error) {
	if p.ID == 0 {
		// id 0 never matches a row; short-circuit before GORM rejects the
		// keyless update.
		return 0, nil
	}
	res := db.WithContext(ctx).
		Model(p).
		Select("*").
		Updates(*p)
	return res.RowsAffected, res.Error
}

// DeletePet hard-deletes the pet with the given id; feedings, playtimes and
// scoldings follow through the FK cascade. It returns the number of rows
// deleted (zero when the pet was already gone).
func DeletePet(ctx context.Context, db *gorm.DB, id uint) (int64, error) {
	res := db.WithContext(ctx).Delete(&domain.Pet{}, id)
	return res.RowsAffected, res.Error
}
