package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"koubei/internal/domain/testimonial"
	"koubei/internal/infrastructure/persistence/sqlite/model"
	"koubei/internal/ports"
)

func setupTestimonialRepository(t *testing.T) *TestimonialRepository {
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
	if err := db.AutoMigrate(&model.Testimonial{}, &model.FeedEvent{}, &model.WallKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewTestimonialRepository(db)
}

func TestCreateAndListTestimonials(t *testing.T) {
	repo := setupTestimonialRepository(t)
	ctx := context.Background()

	rows := []testimonial.Row{
		{ID: "a", Name: "Ana", Organization: "Acme", Rating: 5, Text: "great", CreatedAt: "2026-08-01T10:00:00Z"},
		{ID: "b", Name: "Bo", Organization: "Beta", Rating: 3, Text: "fine", CreatedAt: "2026-08-02T10:00:00Z"},
		{ID: "c", Name: "Cy", Organization: "Core", Rating: 4, Text: "good", CreatedAt: "2026-08-03T10:00:00Z"},
	}
	for _, row := range rows {
		if err := repo.CreateTestimonial(ctx, row); err != nil {
			t.Fatalf("CreateTestimonial(%s): %v", row.ID, err)
		}
	}

	items, err := repo.ListTestimonials(ctx, 2)
	if err != nil {
		t.Fatalf("ListTestimonials() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListTestimonials() len = %d, want 2", len(items))
	}
	// Newest first.
	if items[0].ID != "c" || items[1].ID != "b" {
		t.Fatalf("ListTestimonials() order = %s, %s", items[0].ID, items[1].ID)
	}
}

func TestCreateTestimonialRequiresID(t *testing.T) {
	repo := setupTestimonialRepository(t)

	err := repo.CreateTestimonial(context.Background(), testimonial.Row{Name: "Ana"})
	if err == nil {
		t.Fatal("CreateTestimonial() with empty id should fail")
	}
}

func TestGetTestimonialNotFound(t *testing.T) {
	repo := setupTestimonialRepository(t)

	_, err := repo.GetTestimonial(context.Background(), "missing")
	if !errors.Is(err, ports.ErrTestimonialNotFound) {
		t.Fatalf("GetTestimonial() error = %v, want ErrTestimonialNotFound", err)
	}
}

func TestListFeedEventsAfter(t *testing.T) {
	repo := setupTestimonialRepository(t)
	ctx := context.Background()

	for _, payload := range []string{`{"id":"a"}`, `{"id":"b"}`, `{"id":"c"}`} {
		if err := repo.AppendFeedEvent(ctx, ports.FeedEventCreate{
			RowJSON:   payload,
			CreatedAt: "2026-08-01T10:00:00Z",
		}); err != nil {
			t.Fatalf("AppendFeedEvent(%s): %v", payload, err)
		}
	}

	events, err := repo.ListFeedEventsAfter(ctx, 1, 0)
	if err != nil {
		t.Fatalf("ListFeedEventsAfter() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ListFeedEventsAfter() len = %d, want 2", len(events))
	}
	if events[0].EventID != 2 || events[1].EventID != 3 {
		t.Fatalf("ListFeedEventsAfter() ids = %d, %d", events[0].EventID, events[1].EventID)
	}
	if events[0].RowJSON != `{"id":"b"}` {
		t.Fatalf("ListFeedEventsAfter() payload = %s", events[0].RowJSON)
	}
}
