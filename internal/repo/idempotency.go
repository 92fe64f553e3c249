// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the Idempotency
// model used to implement safe-retry semantics for the interaction POST
// endpoints.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-tamagotchi-backend/internal/domain"
)

// ErrDuplicate indicates that an idempotency record already exists for the
// given (pet_id, kind, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns the non-expired record for (petID, kind, key), or
// ErrNotFound. Expiry is evaluated against the caller's now so lookups and
// the middleware share one clock.
func GetIdempotency(ctx context.Context, db *gorm.DB, petID uint, kind domain.InteractionKind, key string, now time.Time) (*domain.Idempotency, error) {
	if petID == 0 || strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("pet_id = ? AND kind = ? AND key = ? AND expires_at > ?", petID, string(kind), key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// CreateIdempotency records the outcome of a completed interaction so later
// retries with the same key replay it. A concurrent insert of the same tuple
// surfaces as ErrDuplicate.
func CreateIdempotency(ctx context.Context, db *gorm.DB, petID uint, kind domain.InteractionKind, key string, eventID uint, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		PetID:     petID,
		Kind:      string(kind),
		Key:       key,
		EventID:   eventID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredIdempotency deletes records whose expiry precedes now and
// reports how many rows went away. Lookups already ignore expired rows, so
// purging only keeps the table from growing without bound; running it once
// at startup is enough.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
