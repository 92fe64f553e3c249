// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the three
// interaction event tables (feedings, playtimes, scoldings).
//
// The three tables share one shape, so every function takes a
// domain.InteractionKind and dispatches to the matching model, returning the
// kind-agnostic domain.InteractionEvent view. Event rows are insert-only:
// there is no update or delete here; rows disappear solely through the
// pet-deletion cascade.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-tamagotchi-backend/internal/domain"
)

// ErrUnknownKind is returned when an interaction kind is none of feeding,
// playtime or scolding. Callers normally pass route-derived constants, so
// hitting it indicates a programming error.
var ErrUnknownKind = errors.New("unknown interaction kind")

// CreateInteraction inserts one event row of the given kind for petID with
// the given instant. The database assigns the integer event id. The caller
// is responsible for running this inside the same transaction as the pet
// update it records.
func CreateInteraction(ctx context.Context, db *gorm.DB, kind domain.InteractionKind, petID uint, when time.Time) (*domain.InteractionEvent, error) {
	switch kind {
	case domain.KindFeeding:
		row := &domain.Feeding{When: when, PetID: petID}
		if err := db.WithContext(ctx).Create(row).Error; err != nil {
			return nil, err
		}
		return &domain.InteractionEvent{ID: row.ID, Kind: kind, PetID: row.PetID, When: row.When}, nil
	case domain.KindPlaytime:
		row := &domain.Playtime{When: when, PetID: petID}
		if err := db.WithContext(ctx).Create(row).Error; err != nil {
			return nil, err
		}
		return &domain.InteractionEvent{ID: row.ID, Kind: kind, PetID: row.PetID, When: row.When}, nil
	case domain.KindScolding:
		row := &domain.Scolding{When: when, PetID: petID}
		if err := db.WithContext(ctx).Create(row).Error; err != nil {
			return nil, err
		}
		return &domain.InteractionEvent{ID: row.ID, Kind: kind, PetID: row.PetID, When: row.When}, nil
	}
	return nil, ErrUnknownKind
}

// GetInteraction fetches a single event of the given kind by id, mainly to
// replay idempotent interaction requests. Missing rows surface as
// ErrNotFound.
func GetInteraction(ctx context.Context, db *gorm.DB, kind domain.InteractionKind, id uint) (*domain.InteractionEvent, error) {
	switch kind {
	case domain.KindFeeding:
		var row domain.Feeding
		if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
			return nil, err
		}
		return &domain.InteractionEvent{ID: row.ID, Kind: kind, PetID: row.PetID, When: row.When}, nil
	case domain.KindPlaytime:
		var row domain.Playtime
		if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
			return nil, err
		}
		return &domain.InteractionEvent{ID: row.ID, Kind: kind, PetID: row.PetID, When: row.When}, nil
	case domain.KindScolding:
		var row domain.Scolding
		if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
			return nil, err
		}
		return &domain.InteractionEvent{ID: row.ID, Kind: kind, PetID: row.PetID, When: row.When}, nil
	}
	return nil, ErrUnknownKind
}

// ListInteractions returns every event of the given kind for petID, ordered
// by when ascending with id as the tiebreak so same-instant events keep a
// deterministic order. It returns an empty slice when the pet has no events
// of that kind.
func ListInteractions(ctx context.Context, db *gorm.DB, kind domain.InteractionKind, petID uint) ([]domain.InteractionEvent, error) {
	// "when" is a keyword in SQLite; quote it in the raw ORDER BY.
	const order = "`when` ASC, id ASC"

	switch kind {
	case domain.KindFeeding:
		var rows []domain.Feeding
		if err := db.WithContext(ctx).Where("pet_id = ?", petID).Order(order).Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]domain.InteractionEvent, 0, len(rows))
		for _, r := range rows {
			out = append(out, domain.InteractionEvent{ID: r.ID, Kind: kind, PetID: r.PetID, When: r.When})
		}
		return out, nil
	case domain.KindPlaytime:
		var rows []domain.Playtime
		if err := db.WithContext(ctx).Where("pet_id = ?", petID).Order(order).Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]domain.InteractionEvent, 0, len(rows))
		for _, r := range rows {
			out = append(out, domain.InteractionEvent{ID: r.ID, Kind: kind, PetID: r.PetID, When: r.When})
		}
		return out, nil
	case domain.KindScolding:
		var rows []domain.Scolding
		if err := db.WithContext(ctx).Where("pet_id = ?", petID).Order(order).Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]domain.InteractionEvent, 0, len(rows))
		for _, r := range rows {
			out = append(out, domain.InteractionEvent{ID: r.ID, Kind: kind, PetID: r.PetID, When: r.When})
		}
		return out, nil
	}
	return nil, ErrUnknownKind
}
