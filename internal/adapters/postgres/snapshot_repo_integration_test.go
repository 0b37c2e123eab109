//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/samirrijal/markermap/internal/adapters/postgres"
	"github.com/samirrijal/markermap/internal/pkg/config"
)

// setupTestDB connects to the test database and ensures the schema exists.
func setupTestDB(t *testing.T) *postgres.DB {
	t.Setenv("MARKERMAP_STORE_DRIVER", "postgres")
	cfg, err := config.Load("markermap-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	schema, err := os.ReadFile("../../../migrations/001_snapshots.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	return db
}

func TestSnapshotRepo_SaveLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewSnapshotRepo(db)
	defer repo.Close()

	ctx := context.Background()
	key := "markers-test-" + time.Now().Format("150405.000000")
	defer db.Pool.Exec(ctx, `DELETE FROM snapshots WHERE key = $1`, key)

	if _, ok, err := repo.Load(ctx, key); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := repo.Save(ctx, key, []byte(`[{"position":[1,2],"name":"a"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, key, []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	blob, ok, err := repo.Load(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected key, got ok=%v err=%v", ok, err)
	}
	if string(blob) != "[]" {
		t.Errorf("expected overwritten snapshot, got %s", blob)
	}
}
