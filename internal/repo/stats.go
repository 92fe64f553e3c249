// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-tamagotchi-backend/internal/domain"
)

// PetsStats returns aggregate metadata for the pets collection: the total
// number of rows and the maximum UpdatedAt timestamp among those rows.
//
// It executes two lightweight queries against the pets table. When no pets
// exist, the returned count is 0 and maxUpdatedAt is nil.
//
// Return values:
//   - count:        total pets
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func PetsStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Pet{})

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// InteractionsStats returns aggregate metadata for one pet's events of the
// given kind: the total number of rows and the greatest When timestamp among
// them.
//
// It executes two lightweight queries against the matching event table
// scoped to petID. When the pet has no events of that kind, the returned
// count is 0 and maxWhen is nil.
//
// Return values:
//   - count:   total events of that kind for petID
//   - maxWhen: pointer to the greatest When, or nil if no rows
//   - err:     database error, if any (including ErrUnknownKind)
func InteractionsStats(ctx context.Context, db *gorm.DB, kind domain.InteractionKind, petID uint) (count int64, maxWhen *time.Time, err error) {
	var model any
	switch kind {
	case domain.KindFeeding:
		model = &domain.Feeding{}
	case domain.KindPlaytime:
		model = &domain.Playtime{}
	case domain.KindScolding:
		model = &domain.Scolding{}
	default:
		return 0, nil, ErrUnknownKind
	}

	q := db.WithContext(ctx).Model(model).Where("pet_id = ?", petID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Latest event instant ("when" is a keyword in SQLite; keep it quoted)
	var row struct {
		When time.Time
	}
	if err = q.Select("`when`").Order("`when` DESC, id DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.When, nil
}
