package gateway

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"koubei/internal/bootstrap/config"
	"koubei/internal/domain/testimonial"
	"koubei/internal/infrastructure/cache"
	"koubei/internal/infrastructure/httpapi"
	"koubei/internal/infrastructure/persistence/sqlite/model"
	"koubei/internal/infrastructure/persistence/sqlite/repository"
	"koubei/internal/infrastructure/persistence/sqlite/uow"
	"koubei/internal/ports"
)

// The client is exercised against the bundled reference gateway, so these
// cover both sides of the wire contract.
func setupGateway(t *testing.T, accessKey string) (*Client, *httpapi.Broadcaster) {
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

	repo := repository.NewTestimonialRepository(db)
	hub := httpapi.NewHub()
	server := httpapi.NewServer(repo, uow.NewUnitOfWork(db), hub, httpapi.ServerOptions{AccessKey: accessKey})
	broadcaster := httpapi.NewBroadcaster(repo, cache.NewSQLiteCache(db), hub, 20*time.Millisecond)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	client := NewClient(context.Background(), config.GatewayConfig{
		URL:       ts.URL,
		AccessKey: accessKey,
		Table:     "testimonials",
	})
	return client, broadcaster
}

func TestInsertThenQueryRoundTrip(t *testing.T) {
	client, _ := setupGateway(t, "secret")
	ctx := context.Background()

	row, err := client.Insert(ctx, testimonial.Draft{
		Name:         " Ana ",
		Organization: "Acme",
		Rating:       5,
		Text:         "Great course",
	})
	if err != nil {
		t.Fatalf("Insert(): %v", err)
	}
	if row.ID == "" || row.Name != "Ana" {
		t.Fatalf("Insert() row = %+v", row)
	}

	rows, err := client.Query(ctx, 0)
	if err != nil {
		t.Fatalf("Query(): %v", err)
	}
	if len(rows) != 1 || rows[0].ID != row.ID {
		t.Fatalf("Query() rows = %+v", rows)
	}
}

func TestInsertSurfacesGatewayReason(t *testing.T) {
	client, _ := setupGateway(t, "")
	ctx := context.Background()

	_, err := client.Insert(ctx, testimonial.Draft{
		Name:         "Ana",
		Organization: "Acme",
		Rating:       9,
		Text:         "nope",
	})
	if err == nil {
		t.Fatal("Insert() with invalid rating should fail")
	}
	if !strings.Contains(err.Error(), "rating") {
		t.Fatalf("Insert() error = %v, want gateway reason included", err)
	}
}

func TestUnconfiguredClientFailsPerCall(t *testing.T) {
	client := NewClient(context.Background(), config.GatewayConfig{})
	ctx := context.Background()

	if _, err := client.Query(ctx, 10); !errors.Is(err, ports.ErrGatewayNotConfigured) {
		t.Fatalf("Query() error = %v, want ErrGatewayNotConfigured", err)
	}
	if _, err := client.Insert(ctx, testimonial.Draft{}); !errors.Is(err, ports.ErrGatewayNotConfigured) {
		t.Fatalf("Insert() error = %v, want ErrGatewayNotConfigured", err)
	}
	if _, err := client.Subscribe(ctx); !errors.Is(err, ports.ErrGatewayNotConfigured) {
		t.Fatalf("Subscribe() error = %v, want ErrGatewayNotConfigured", err)
	}
}

func TestSubscribeReceivesInsertFeed(t *testing.T) {
	client, broadcaster := setupGateway(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = broadcaster.Run(ctx) }()

	sub, err := client.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe(): %v", err)
	}
	defer sub.Stop()

	// Give the server a beat to register the subscriber after the upgrade.
	time.Sleep(50 * time.Millisecond)

	inserted, err := client.Insert(ctx, testimonial.Draft{
		Name:         "Ana",
		Organization: "Acme",
		Rating:       5,
		Text:         "Great course",
	})
	if err != nil {
		t.Fatalf("Insert(): %v", err)
	}

	select {
	case row, ok := <-sub.Rows():
		if !ok {
			t.Fatal("feed closed before delivering")
		}
		if row.ID != inserted.ID {
			t.Fatalf("feed row id = %s, want %s", row.ID, inserted.ID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no feed row within timeout")
	}

	// Stop twice: release must be idempotent.
	sub.Stop()
	sub.Stop()
}
