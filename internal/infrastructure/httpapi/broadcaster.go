package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"koubei/internal/bootstrap/logging"
	"koubei/internal/domain/testimonial"
	"koubei/internal/errs"
	"koubei/internal/ports"
)

const feedCursorKey = "feed.cursor"
const feedBatchLimit = 100

// Broadcaster replays committed feed events to hub subscribers. Rows and
// their feed events commit in one transaction, so polling the events table
// after a cursor never announces an uncommitted insert. The cursor persists
// best-effort in the KV cache; after a restart some rows may be re-sent,
// which subscribers absorb by upserting per id.
type Broadcaster struct {
	repo     ports.TestimonialRepository
	cache    ports.Cache
	hub      *Hub
	interval time.Duration

	cursor uint64
}

func NewBroadcaster(repo ports.TestimonialRepository, cache ports.Cache, hub *Hub, interval time.Duration) *Broadcaster {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Broadcaster{
		repo:     repo,
		cache:    cache,
		hub:      hub,
		interval: interval,
	}
}

// Run polls until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "httpapi.broadcaster"))
	b.loadCursor(logCtx)
	logging.Info(logCtx, "feed broadcaster started",
		slog.Uint64("cursor", b.cursor),
		slog.Duration("interval", b.interval),
	)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info(logCtx, "feed broadcaster stopped", slog.Uint64("cursor", b.cursor))
			return nil
		case <-ticker.C:
			if err := b.poll(logCtx); err != nil {
				logging.Warn(logCtx, "feed poll failed", slog.Any("err", errs.Loggable(err)))
			}
		}
	}
}

func (b *Broadcaster) loadCursor(ctx context.Context) {
	if b.cache == nil {
		return
	}

	value, found, err := b.cache.Get(ctx, feedCursorKey)
	if err != nil || !found {
		return
	}
	cursor, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		logging.Warn(ctx, "invalid persisted feed cursor", slog.String("value", value))
		return
	}
	b.cursor = cursor
}

func (b *Broadcaster) poll(ctx context.Context) error {
	events, err := b.repo.ListFeedEventsAfter(ctx, b.cursor, feedBatchLimit)
	if err != nil {
		return errs.Wrap(err, "list feed events")
	}
	if len(events) == 0 {
		return nil
	}

	for _, event := range events {
		var row testimonial.Row
		if err := json.Unmarshal([]byte(event.RowJSON), &row); err != nil {
			logging.Warn(ctx, "skip malformed feed event",
				slog.Uint64("event_id", event.EventID),
				slog.Any("err", errs.Loggable(err)),
			)
			b.cursor = event.EventID
			continue
		}
		b.hub.Publish(row)
		b.cursor = event.EventID
	}

	if b.cache != nil {
		_ = b.cache.Set(ctx, feedCursorKey, strconv.FormatUint(b.cursor, 10), 0)
	}
	return nil
}
