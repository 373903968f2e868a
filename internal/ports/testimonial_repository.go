package ports

import (
	"context"
	"errors"

	"koubei/internal/domain/testimonial"
)

var ErrTestimonialNotFound = errors.New("testimonial not found")

// FeedEvent is one recorded insert, appended in the same transaction as its
// row and later replayed to realtime subscribers.
type FeedEvent struct {
	EventID   uint64
	RowJSON   string
	CreatedAt string
}

type FeedEventCreate struct {
	RowJSON   string
	CreatedAt string
}

type TestimonialRepository interface {
	ListTestimonials(ctx context.Context, limit int) ([]testimonial.Row, error)
	GetTestimonial(ctx context.Context, id string) (testimonial.Row, error)
	CreateTestimonial(ctx context.Context, row testimonial.Row) error
	AppendFeedEvent(ctx context.Context, input FeedEventCreate) error
	ListFeedEventsAfter(ctx context.Context, afterEventID uint64, limit int) ([]FeedEvent, error)
}
