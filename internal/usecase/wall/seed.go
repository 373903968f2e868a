package wall

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"koubei/internal/bootstrap/logging"
	"koubei/internal/domain/testimonial"
	"koubei/internal/errs"
)

type seedEntry struct {
	Name         string `toml:"name"`
	Organization string `toml:"organization"`
	Rating       int    `toml:"rating"`
	Text         string `toml:"text"`
}

type seedProfile struct {
	Testimonials []seedEntry `toml:"testimonials"`
}

// LoadSeedFile parses a TOML seed file of [[testimonials]] entries and
// validates each draft with the same ordered checks as the form.
func LoadSeedFile(path string) ([]testimonial.Draft, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return nil, errors.New("seed file is required")
	}

	raw, err := os.ReadFile(trimmedPath)
	if err != nil {
		return nil, errs.Wrap(err, "read seed file")
	}

	var profile seedProfile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return nil, errs.Wrap(err, "parse seed file")
	}
	if len(profile.Testimonials) == 0 {
		return nil, errors.New("seed file has no testimonials")
	}

	drafts := make([]testimonial.Draft, 0, len(profile.Testimonials))
	for index, entry := range profile.Testimonials {
		draft := testimonial.Draft{
			Name:         entry.Name,
			Organization: entry.Organization,
			Rating:       entry.Rating,
			Text:         entry.Text,
		}.Normalized()
		if err := draft.Validate(); err != nil {
			return nil, errs.Wrapf(err, "seed entry %d (%s)", index+1, entry.Name)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// Seed submits every draft from the file through the gateway and returns how
// many were inserted.
func (s *Service) Seed(ctx context.Context, path string) (int, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}

	drafts, err := LoadSeedFile(path)
	if err != nil {
		return 0, err
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "wall.service"))
	for index, draft := range drafts {
		if _, err := s.gateway.Insert(ctx, draft); err != nil {
			return index, errs.Wrapf(err, "insert seed entry %d", index+1)
		}
	}

	logging.Info(logCtx, "seed completed", slog.Int("count", len(drafts)), slog.String("file", path))
	return len(drafts), nil
}
