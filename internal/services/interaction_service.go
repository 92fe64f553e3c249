// Package services – InteractionService
//
// This file implements InteractionService, the engine behind feedings,
// playtimes, and scoldings. A single parameterized flow loads the pet, gates
// on the death rule, applies the kind's stat deltas, and persists the updated
// pet together with the new event record atomically. Dead pets are left
// untouched and reported via ErrPetDead so handlers can render the
// distinguished dead-pet response.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// the pet id and interaction kind.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-tamagotchi-backend/internal/domain"
	"github.com/tbourn/go-tamagotchi-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// InteractionService coordinates pet mutation and event persistence for the
// three interaction kinds. It is context-aware and opens its own transaction
// per interaction.
type InteractionService struct {
	// DB is the database handle used for all interaction operations.
	// The handle may be a plain *gorm.DB or a transaction-bound handle.
	DB *gorm.DB

	// Now supplies the interaction instant. Tests may pin it; when nil,
	// time.Now is used.
	Now func() time.Time
}

// now returns the service clock in UTC, falling back to the wall clock.
func (s *InteractionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Interact performs one interaction of the given kind against petID.
//
// Semantics:
//   - petID must exist; otherwise ErrPetNotFound.
//   - A pet that is dead at the interaction instant (checked BEFORE deltas)
//     yields ErrPetDead; nothing is written.
//   - Otherwise the kind's deltas are applied unclamped, the pet's
//     last-interaction stamp is set to now, and one event row of the matching
//     kind is recorded with the same instant.
//
// Concurrency & atomicity:
//   - The pet update and the event insert run inside one transaction; the
//     update is conditional on the pet's version token. A conditional write
//     that matches zero rows is re-checked: a vanished row maps to
//     ErrPetNotFound, a surviving row to ErrUpdateConflict. No retries.
//
// Errors:
//   - Returns the service-level sentinel errors (ErrPetNotFound, ErrPetDead,
//     ErrUpdateConflict) for the cases above.
//   - Returns the underlying DB error for unexpected failures.
func (s *InteractionService) Interact(ctx context.Context, petID uint, kind domain.InteractionKind) (*domain.InteractionEvent, error) {
	tr := otel.Tracer("services/InteractionService")
	ctx, span := tr.Start(ctx, "Interact",
		trace.WithAttributes(
			attribute.Int64("pet.id", int64(petID)),
			attribute.String("interaction.kind", string(kind)),
		),
	)
	defer span.End()

	if !kind.Valid() {
		return nil, repo.ErrUnknownKind
	}

	now := s.now()

	var created *domain.InteractionEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) Load the pet and verify it exists.
		pet, err := repo.GetPet(ctx, tx, petID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrPetNotFound
			}
			return err
		}

		// 2) Dead pets are left exactly as they are.
		if domain.IsDead(pet, now) {
			return ErrPetDead
		}

		// 3) Apply the kind's deltas and stamp the interaction.
		hungerDelta, happinessDelta := kind.Deltas()
		pet.HungerLevel += hungerDelta
		pet.HappinessLevel += happinessDelta
		pet.LastInteractedWithDate = now

		// 4) Conditional write; zero rows means vanished or beaten to it.
		rows, err := repo.UpdatePet(ctx, tx, pet)
		if err != nil {
			return err
		}
		if rows == 0 {
			if _, err := repo.GetPet(ctx, tx, petID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return ErrPetNotFound
				}
				return err
			}
			return ErrUpdateConflict
		}

		// 5) Record the event with the same instant as the pet stamp.
		ev, err := repo.CreateInteraction(ctx, tx, kind, petID, now)
		if err != nil {
			return err
		}
		created = ev
		return nil
	})

	switch {
	case err == nil:
		petInteractions.WithLabelValues(string(kind)).Inc()
		return created, nil
	case errors.Is(err, ErrPetDead):
		deadPetInteractions.Inc()
		return nil, err
	case errors.Is(err, ErrUpdateConflict):
		updateConflicts.Inc()
		return nil, err
	default:
		return nil, err
	}
}

// ListEvents returns every recorded event of the given kind for petID,
// ordered by event time then id. The pet must exist; otherwise ErrPetNotFound.
func (s *InteractionService) ListEvents(ctx context.Context, petID uint, kind domain.InteractionKind) ([]domain.InteractionEvent, error) {
	tr := otel.Tracer("services/InteractionService")
	ctx, span := tr.Start(ctx, "ListEvents",
		trace.WithAttributes(
			attribute.Int64("pet.id", int64(petID)),
			attribute.String("interaction.kind", string(kind)),
		),
	)
	defer span.End()

	if _, err := repo.GetPet(ctx, s.DB, petID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, err
	}
	return repo.ListInteractions(ctx, s.DB, kind, petID)
}
