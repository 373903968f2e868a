package wall

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"koubei/internal/domain/testimonial"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestLoadSeedFileParsesEntries(t *testing.T) {
	path := writeSeedFile(t, `
[[testimonials]]
name = "  张三  "
organization = "口碑组"
rating = 5
text = "好用"

[[testimonials]]
name = "李四"
organization = "平台组"
rating = 3
text = "还行"
`)

	drafts, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile() error = %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("len(drafts) = %d, want 2", len(drafts))
	}
	if drafts[0].Name != "张三" {
		t.Fatalf("name not trimmed: %q", drafts[0].Name)
	}
	if drafts[1].Rating != 3 {
		t.Fatalf("rating = %d, want 3", drafts[1].Rating)
	}
}

func TestLoadSeedFileRejectsInvalidEntry(t *testing.T) {
	path := writeSeedFile(t, `
[[testimonials]]
name = "张三"
organization = "口碑组"
rating = 9
text = "好用"
`)

	if _, err := LoadSeedFile(path); !errors.Is(err, testimonial.ErrRatingOutOfRange) {
		t.Fatalf("LoadSeedFile() error = %v, want %v", err, testimonial.ErrRatingOutOfRange)
	}
}

func TestLoadSeedFileRejectsEmptyProfile(t *testing.T) {
	path := writeSeedFile(t, "")

	if _, err := LoadSeedFile(path); err == nil {
		t.Fatal("LoadSeedFile() should fail on empty profile")
	}
}

func TestLoadSeedFileRequiresPath(t *testing.T) {
	if _, err := LoadSeedFile("  "); err == nil {
		t.Fatal("LoadSeedFile() should fail on blank path")
	}
}

func TestSeedInsertsEveryDraft(t *testing.T) {
	path := writeSeedFile(t, `
[[testimonials]]
name = "张三"
organization = "口碑组"
rating = 5
text = "好用"

[[testimonials]]
name = "李四"
organization = "平台组"
rating = 4
text = "稳定"
`)

	gateway := &fakeGateway{insertRow: rowWithID("seeded")}
	service := NewService(gateway)

	count, err := service.Seed(context.Background(), path)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("Seed() = %d, want 2", count)
	}
	if len(gateway.inserted) != 2 {
		t.Fatalf("gateway received %d inserts, want 2", len(gateway.inserted))
	}
}

func TestSeedStopsAtFirstGatewayFailure(t *testing.T) {
	path := writeSeedFile(t, `
[[testimonials]]
name = "张三"
organization = "口碑组"
rating = 5
text = "好用"
`)

	cause := errors.New("gateway down")
	service := NewService(&fakeGateway{insertErr: cause})

	count, err := service.Seed(context.Background(), path)
	if !errors.Is(err, cause) {
		t.Fatalf("Seed() error = %v, want %v", err, cause)
	}
	if count != 0 {
		t.Fatalf("Seed() = %d inserted before failure, want 0", count)
	}
}
