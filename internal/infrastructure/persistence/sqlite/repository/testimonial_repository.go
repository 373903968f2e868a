package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"koubei/internal/domain/testimonial"
	"koubei/internal/errs"
	"koubei/internal/infrastructure/persistence/sqlite/model"
	"koubei/internal/ports"
)

type TestimonialRepository struct {
	db *gorm.DB
}

var _ ports.TestimonialRepository = (*TestimonialRepository)(nil)

func NewTestimonialRepository(db *gorm.DB) *TestimonialRepository {
	return &TestimonialRepository{db: db}
}

func (r *TestimonialRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *TestimonialRepository) ListTestimonials(ctx context.Context, limit int) ([]testimonial.Row, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Testimonial{}).Order("created_at desc, id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Testimonial
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query testimonials")
	}

	items := make([]testimonial.Row, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapTestimonial(row))
	}
	return items, nil
}

func (r *TestimonialRepository) GetTestimonial(ctx context.Context, id string) (testimonial.Row, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return testimonial.Row{}, err
	}

	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return testimonial.Row{}, errors.New("id is required")
	}

	var row model.Testimonial
	if err := db.Where("id = ?", trimmedID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return testimonial.Row{}, ports.ErrTestimonialNotFound
		}
		return testimonial.Row{}, errs.Wrap(err, "query testimonial by id")
	}
	return mapTestimonial(row), nil
}

func (r *TestimonialRepository) CreateTestimonial(ctx context.Context, row testimonial.Row) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if strings.TrimSpace(row.ID) == "" {
		return errors.New("id is required")
	}

	record := model.Testimonial{
		ID:           row.ID,
		Name:         row.Name,
		Organization: row.Organization,
		Rating:       row.Rating,
		Text:         row.Text,
		CreatedAt:    row.CreatedAt,
	}
	if err := db.Create(&record).Error; err != nil {
		return errs.Wrap(err, "insert testimonial")
	}
	return nil
}

func (r *TestimonialRepository) AppendFeedEvent(ctx context.Context, input ports.FeedEventCreate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	record := model.FeedEvent{
		RowJSON:   input.RowJSON,
		CreatedAt: input.CreatedAt,
	}
	if err := db.Create(&record).Error; err != nil {
		return errs.Wrap(err, "insert feed event")
	}
	return nil
}

func (r *TestimonialRepository) ListFeedEventsAfter(ctx context.Context, afterEventID uint64, limit int) ([]ports.FeedEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.FeedEvent{}).Where("event_id > ?", afterEventID).Order("event_id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.FeedEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query feed events")
	}

	items := make([]ports.FeedEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.FeedEvent{
			EventID:   row.EventID,
			RowJSON:   row.RowJSON,
			CreatedAt: row.CreatedAt,
		})
	}
	return items, nil
}

func mapTestimonial(row model.Testimonial) testimonial.Row {
	return testimonial.Row{
		ID:           row.ID,
		Name:         row.Name,
		Organization: row.Organization,
		Rating:       row.Rating,
		Text:         row.Text,
		CreatedAt:    row.CreatedAt,
	}
}
