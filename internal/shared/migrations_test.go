package shared

import (
	"database/sql"
	"testing"
)

func memoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("failed to load migrations: %v", err)
	}

	want := []string{"create_tracks", "create_likes", "create_purchases"}
	if len(migrations) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(migrations))
	}
	for i, m := range migrations {
		if m.Version != i+1 {
			t.Errorf("migration %d has version %d", i, m.Version)
		}
		if m.Name != want[i] {
			t.Errorf("migration %d: expected name %q, got %q", m.Version, want[i], m.Name)
		}
		if m.Up == "" || m.Down == "" {
			t.Errorf("migration %d missing a direction", m.Version)
		}
	}
}

func TestMigrate(t *testing.T) {
	t.Run("applies pending then nothing", func(t *testing.T) {
		db := memoryDB(t)

		n, err := Migrate(db)
		if err != nil {
			t.Fatalf("migrate: %v", err)
		}
		if n != 3 {
			t.Errorf("expected 3 applied, got %d", n)
		}

		n, err = Migrate(db)
		if err != nil {
			t.Fatalf("second migrate: %v", err)
		}
		if n != 0 {
			t.Errorf("expected nothing pending, got %d", n)
		}

		for _, table := range []string{"tracks", "likes", "purchases"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("table %s missing: %v", table, err)
			}
		}
	})

	t.Run("rollback drops the latest version", func(t *testing.T) {
		db := memoryDB(t)
		if err := RunMigrations(db); err != nil {
			t.Fatal(err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("rollback: %v", err)
		}
		version, err := GetCurrentVersion(db)
		if err != nil {
			t.Fatal(err)
		}
		if version != 2 {
			t.Errorf("expected version 2, got %d", version)
		}
		if _, err := db.Exec("SELECT 1 FROM purchases"); err == nil {
			t.Error("purchases should be dropped")
		}

		n, err := Migrate(db)
		if err != nil || n != 1 {
			t.Errorf("expected to reapply one migration, got %d (%v)", n, err)
		}
	})

	t.Run("rollback on empty database", func(t *testing.T) {
		db := memoryDB(t)
		if err := createMigrationsTable(db); err != nil {
			t.Fatal(err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error with nothing applied")
		}
	})
}

func TestMigrationStatus(t *testing.T) {
	db := memoryDB(t)

	states, err := MigrationStatus(db)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range states {
		if s.Applied() {
			t.Errorf("migration %d should be pending", s.Version)
		}
	}

	if err := RunMigrations(db); err != nil {
		t.Fatal(err)
	}
	if err := RollbackMigration(db); err != nil {
		t.Fatal(err)
	}

	states, err = MigrationStatus(db)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 3 {
		t.Fatalf("expected 3 states, got %d", len(states))
	}
	if !states[0].Applied() || !states[1].Applied() {
		t.Error("first two migrations should be applied")
	}
	if states[2].Applied() || states[2].Name != "create_purchases" {
		t.Errorf("unexpected last state %+v", states[2])
	}
}

func TestStripComments(t *testing.T) {
	got := stripComments("-- header\nCREATE TABLE x (\n  id TEXT -- key\n)\n\n")
	if got != "CREATE TABLE x (\nid TEXT\n)" {
		t.Errorf("got %q", got)
	}
	if stripComments("  -- only a comment  ") != "" {
		t.Error("comment-only statement should be empty")
	}
}
