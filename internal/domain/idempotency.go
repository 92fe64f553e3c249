package domain

import "time"

// Idempotency represents a recorded result of a previously processed
// interaction request, keyed by (pet_id, kind, key). It enables safe client
// retries of interaction POSTs by replaying the originally created event
// without touching the pet again.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	PetID     uint      `gorm:"not null;uniqueIndex:ux_pet_kind_key,priority:1"`
	Kind      string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_pet_kind_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_pet_kind_key,priority:3"`
	EventID   uint      `gorm:"not null"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
