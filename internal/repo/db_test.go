package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-tamagotchi-backend/internal/domain"
)

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "does-not-exist", "pets.db")

	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}
	// The parent-dir stat runs before the driver, so the error is a plain
	// not-exist on every platform.
	if !os.IsNotExist(err) {
		t.Fatalf("expected a not-exist error, got: %v", err)
	}
}

func TestOpenSQLite_PragmasAndPool(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "pets.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	pragmas := []struct {
		name string
		want string // synchronous NORMAL reads back as 1
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"foreign_keys", "1"},
		{"busy_timeout", "5000"},
	}
	for _, p := range pragmas {
		var got string
		if err := db.Raw("PRAGMA " + p.name + ";").Row().Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", p.name, err)
		}
		if strings.ToLower(got) != p.want {
			t.Fatalf("PRAGMA %s = %q; want %q", p.name, got, p.want)
		}
	}

	if stats := sqlDB.Stats(); stats.MaxOpenConnections != 10 {
		t.Fatalf("MaxOpenConnections = %d; want 10", stats.MaxOpenConnections)
	}
}

func TestAutoMigrate_SchemaRoundTrip(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "pets.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	m := db.Migrator()
	for _, model := range []any{&domain.Pet{}, &domain.Feeding{}, &domain.Playtime{}, &domain.Scolding{}, &domain.Idempotency{}} {
		if !m.HasTable(model) {
			t.Fatalf("expected table for %T to exist", model)
		}
	}

	// Insert across the foreign key to prove the schema is usable as created.
	now := time.Now().UTC()
	pet := &domain.Pet{Name: "Smoke", Birthday: now, LastInteractedWithDate: now}
	if err := db.Create(pet).Error; err != nil {
		t.Fatalf("insert pet: %v", err)
	}
	feeding := &domain.Feeding{When: now, PetID: pet.ID}
	if err := db.Create(feeding).Error; err != nil {
		t.Fatalf("insert feeding: %v", err)
	}
	idem := &domain.Idempotency{
		ID:        "i1",
		PetID:     pet.ID,
		Kind:      string(domain.KindFeeding),
		Key:       "k1",
		EventID:   feeding.ID,
		Status:    200,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := db.Create(idem).Error; err != nil {
		t.Fatalf("insert idempotency: %v", err)
	}

	var got domain.Pet
	if err := db.First(&got, pet.ID).Error; err != nil || got.Name != "Smoke" {
		t.Fatalf("read back pet: err=%v got=%+v", err, got)
	}
}
