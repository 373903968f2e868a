package cache

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"koubei/internal/infrastructure/persistence/sqlite/model"
)

func setupCache(t *testing.T) *SQLiteCache {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "wall.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.WallKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewSQLiteCache(db)
}

func TestCacheSetGetDelete(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if _, found, err := c.Get(ctx, "feed.cursor"); err != nil || found {
		t.Fatalf("Get() before set = found=%v err=%v", found, err)
	}

	if err := c.Set(ctx, "feed.cursor", "42", 0); err != nil {
		t.Fatalf("Set(): %v", err)
	}
	if err := c.Set(ctx, "feed.cursor", "43", 0); err != nil {
		t.Fatalf("Set() overwrite: %v", err)
	}

	value, found, err := c.Get(ctx, "feed.cursor")
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if !found || value != "43" {
		t.Fatalf("Get() = %q found=%v, want 43", value, found)
	}

	if err := c.Delete(ctx, "feed.cursor"); err != nil {
		t.Fatalf("Delete(): %v", err)
	}
	if _, found, err := c.Get(ctx, "feed.cursor"); err != nil || found {
		t.Fatalf("Get() after delete = found=%v err=%v", found, err)
	}
}

func TestCacheRejectsEmptyKey(t *testing.T) {
	c := setupCache(t)

	if err := c.Set(context.Background(), "  ", "v", 0); err == nil {
		t.Fatal("Set() with blank key should fail")
	}
}
