package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-tamagotchi-backend/internal/domain"
)

func newInteractionRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique in-memory DB per test so schemas never leak between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateInteraction_AllKinds_RoundTrip(t *testing.T) {
	db := newInteractionRepoDB(t, &domain.Feeding{}, &domain.Playtime{}, &domain.Scolding{})
	ctx := context.Background()
	when := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

	for _, kind := range []domain.InteractionKind{domain.KindFeeding, domain.KindPlaytime, domain.KindScolding} {
		ev, err := CreateInteraction(ctx, db, kind, 5, when)
		if err != nil {
			t.Fatalf("CreateInteraction(%s): %v", kind, err)
		}
		if ev == nil || ev.ID == 0 {
			t.Fatalf("expected assigned ID for %s, got %+v", kind, ev)
		}
		if ev.Kind != kind || ev.PetID != 5 || !ev.When.Equal(when) {
			t.Fatalf("unexpected event for %s: %+v", kind, ev)
		}
	}

	// Each kind must land in its own table.
	for _, check := range []struct {
		model any
		name  string
	}{
		{&domain.Feeding{}, "feedings"},
		{&domain.Playtime{}, "playtimes"},
		{&domain.Scolding{}, "scoldings"},
	} {
		var n int64
		if err := db.Model(check.model).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", check.name, err)
		}
		if n != 1 {
			t.Fatalf("expected 1 row in %s, got %d", check.name, n)
		}
	}
}

func TestCreateInteraction_UnknownKind(t *testing.T) {
	db := newInteractionRepoDB(t, &domain.Feeding{})
	_, err := CreateInteraction(context.Background(), db, domain.InteractionKind("nap"), 1, time.Now().UTC())
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestCreateInteraction_Error_NoTable(t *testing.T) {
	db := newInteractionRepoDB(t) // no migrations
	_, err := CreateInteraction(context.Background(), db, domain.KindFeeding, 1, time.Now().UTC())
	if err == nil {
		t.Fatalf("expected error when feedings table is missing")
	}
}

func TestGetInteraction_FoundAndNotFound(t *testing.T) {
	db := newInteractionRepoDB(t, &domain.Playtime{})
	ctx := context.Background()
	when := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)

	created, err := CreateInteraction(ctx, db, domain.KindPlaytime, 3, when)
	if err != nil {
		t.Fatalf("seed playtime: %v", err)
	}

	got, err := GetInteraction(ctx, db, domain.KindPlaytime, created.ID)
	if err != nil {
		t.Fatalf("GetInteraction: %v", err)
	}
	if got.ID != created.ID || got.Kind != domain.KindPlaytime || got.PetID != 3 || !got.When.Equal(when) {
		t.Fatalf("unexpected event: %+v", got)
	}

	if _, err := GetInteraction(ctx, db, domain.KindPlaytime, created.ID+100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestGetInteraction_UnknownKind(t *testing.T) {
	db := newInteractionRepoDB(t, &domain.Playtime{})
	if _, err := GetInteraction(context.Background(), db, domain.InteractionKind("nap"), 1); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestListInteractions_OrderedAndScoped(t *testing.T) {
	db := newInteractionRepoDB(t, &domain.Feeding{})
	ctx := context.Background()

	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	// Insert out of chronological order, plus one row for another pet.
	seeds := []struct {
		petID uint
		when  time.Time
	}{
		{1, base.Add(2 * time.Hour)},
		{1, base},
		{2, base.Add(time.Minute)},
		{1, base.Add(time.Hour)},
	}
	for i, s := range seeds {
		if _, err := CreateInteraction(ctx, db, domain.KindFeeding, s.petID, s.when); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	events, err := ListInteractions(ctx, db, domain.KindFeeding, 1)
	if err != nil {
		t.Fatalf("ListInteractions: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events for pet 1, got %d", len(events))
	}
	want := []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}
	for i, ev := range events {
		if ev.PetID != 1 {
			t.Fatalf("event %d belongs to pet %d", i, ev.PetID)
		}
		if !ev.When.Equal(want[i]) {
			t.Fatalf("event %d: expected when %v, got %v", i, want[i], ev.When)
		}
	}
}

func TestListInteractions_SameInstant_IDTiebreak(t *testing.T) {
	db := newInteractionRepoDB(t, &domain.Scolding{})
	ctx := context.Background()
	when := time.Date(2026, 7, 2, 12, 0, 0, 0, time.UTC)

	first, err := CreateInteraction(ctx, db, domain.KindScolding, 4, when)
	if err != nil {
		t.Fatalf("seed first: %v", err)
	}
	second, err := CreateInteraction(ctx, db, domain.KindScolding, 4, when)
	if err != nil {
		t.Fatalf("seed second: %v", err)
	}

	events, err := ListInteractions(ctx, db, domain.KindScolding, 4)
	if err != nil {
		t.Fatalf("ListInteractions: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != first.ID || events[1].ID != second.ID {
		t.Fatalf("expected insertion order on equal timestamps, got [%d, %d]", events[0].ID, events[1].ID)
	}
}

func TestListInteractions_EmptyAndUnknownKind(t *testing.T) {
	db := newInteractionRepoDB(t, &domain.Feeding{})
	ctx := context.Background()

	events, err := ListInteractions(ctx, db, domain.KindFeeding, 123)
	if err != nil {
		t.Fatalf("ListInteractions empty: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}

	if _, err := ListInteractions(ctx, db, domain.InteractionKind("nap"), 1); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestListInteractions_Error_NoTable(t *testing.T) {
	db := newInteractionRepoDB(t) // no migrations
	if _, err := ListInteractions(context.Background(), db, domain.KindFeeding, 1); err == nil {
		t.Fatalf("expected error when feedings table is missing")
	}
}
