// Package domain defines the persistence models for pets and their
// interaction events. These types are mapped with GORM and form the core
// data layer of the tamagotchi application.
package domain

import (
	"time"

	"gorm.io/plugin/optimisticlock"
)

// Pet represents a single virtual pet. Its hunger and happiness stats drift
// as clients interact with it; whether the pet is dead is never stored but
// derived on every read (see IsDead).
//
// Fields:
//   - ID: integer primary key, assigned by the database on creation.
//   - Name: client-supplied display name (whitespace-trimmed, otherwise
//     stored verbatim).
//   - Birthday: creation instant, set by the server and doubling as the
//     record's creation timestamp.
//   - HungerLevel: starts at 0; unclamped, so it may go negative or climb
//     past the death ceiling.
//   - HappinessLevel: starts at 0; unclamped.
//   - LastInteractedWithDate: set at creation and refreshed by every
//     successful interaction.
//   - Version: optimistic-concurrency token managed by the optimisticlock
//     plugin; stale conditional writes match zero rows.
//   - UpdatedAt: timestamp managed by GORM.
//   - IsDead: DERIVED death flag, never persisted; populated from the death
//     rule before the pet is rendered.
type Pet struct {
	ID                     uint                   `json:"id"                        gorm:"primaryKey"`
	Name                   string                 `json:"name"                      gorm:"type:varchar(255);not null"`
	Birthday               time.Time              `json:"birthday"                  gorm:"not null"`
	HungerLevel            int                    `json:"hunger_level"              gorm:"not null;default:0"`
	HappinessLevel         int                    `json:"happiness_level"           gorm:"not null;default:0"`
	LastInteractedWithDate time.Time              `json:"last_interacted_with_date" gorm:"not null"`
	Version                optimisticlock.Version `json:"version"                   swaggertype:"integer"`
	UpdatedAt              time.Time              `json:"updated_at"`

	IsDead bool `json:"is_dead" gorm:"-"`
}

// TableName returns the database table name for Pet.
func (Pet) TableName() string { return "pets" }

// Feeding records one feeding of a pet. Event rows are immutable: they are
// only ever inserted, and disappear solely through the pet-deletion cascade.
//
// Fields:
//   - ID: integer primary key, assigned by the database.
//   - When: instant the feeding happened (same clock reading as the pet's
//     LastInteractedWithDate update).
//   - PetID: foreign key to the fed pet (indexed with When for ordered
//     per-pet listing).
//   - Pet: FK association, ensures cascade delete/update.
type Feeding struct {
	ID    uint      `json:"id"     gorm:"primaryKey"`
	When  time.Time `json:"when"   gorm:"not null;index:idx_feedings_pet,priority:2"`
	PetID uint      `json:"pet_id" gorm:"not null;index:idx_feedings_pet,priority:1"`

	Pet Pet `json:"-" gorm:"foreignKey:PetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Feeding.
func (Feeding) TableName() string { return "feedings" }

// Playtime records one play session with a pet. Same shape and lifecycle as
// Feeding.
type Playtime struct {
	ID    uint      `json:"id"     gorm:"primaryKey"`
	When  time.Time `json:"when"   gorm:"not null;index:idx_playtimes_pet,priority:2"`
	PetID uint      `json:"pet_id" gorm:"not null;index:idx_playtimes_pet,priority:1"`

	Pet Pet `json:"-" gorm:"foreignKey:PetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Playtime.
func (Playtime) TableName() string { return "playtimes" }

// Scolding records one scolding of a pet. Same shape and lifecycle as
// Feeding.
type Scolding struct {
	ID    uint      `json:"id"     gorm:"primaryKey"`
	When  time.Time `json:"when"   gorm:"not null;index:idx_scoldings_pet,priority:2"`
	PetID uint      `json:"pet_id" gorm:"not null;index:idx_scoldings_pet,priority:1"`

	Pet Pet `json:"-" gorm:"foreignKey:PetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Scolding.
func (Scolding) TableName() string { return "scoldings" }
