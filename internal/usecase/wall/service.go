package wall

import (
	"context"
	"errors"
	"log/slog"

	"koubei/internal/bootstrap/logging"
	"koubei/internal/domain/testimonial"
	"koubei/internal/errs"
	"koubei/internal/ports"
)

// Service wraps the gateway operations the wall consumes. The gateway is an
// injected port so consoles and tests swap in doubles freely.
type Service struct {
	gateway ports.Gateway
}

func NewService(gateway ports.Gateway) *Service {
	return &Service{gateway: gateway}
}

// Gateway exposes the underlying port for consumers that manage their own
// subscription lifecycle, such as the feed bridge.
func (s *Service) Gateway() ports.Gateway {
	return s.gateway
}

// Fetch performs the initial bulk read, capped at the gateway query limit.
func (s *Service) Fetch(ctx context.Context) ([]testimonial.Row, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	rows, err := s.gateway.Query(ctx, ports.QueryLimit)
	if err != nil {
		return nil, errs.Wrap(err, "query testimonials")
	}
	return rows, nil
}

// Submit validates the draft and inserts it through the gateway. Validation
// failures return before any gateway call; gateway failures pass the
// reported reason through for the form's error slot.
func (s *Service) Submit(ctx context.Context, draft testimonial.Draft) (testimonial.Row, error) {
	if ctx == nil {
		return testimonial.Row{}, errors.New("context is required")
	}

	normalized := draft.Normalized()
	if err := normalized.Validate(); err != nil {
		return testimonial.Row{}, err
	}

	row, err := s.gateway.Insert(ctx, normalized)
	if err != nil {
		return testimonial.Row{}, err
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "wall.service")),
		"testimonial submitted",
		slog.String("id", row.ID),
		slog.Int("rating", row.Rating),
	)
	return row, nil
}

// Subscribe opens the live insert feed.
func (s *Service) Subscribe(ctx context.Context) (ports.GatewaySubscription, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	return s.gateway.Subscribe(ctx)
}
