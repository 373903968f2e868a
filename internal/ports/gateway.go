package ports

import (
	"context"
	"errors"

	"koubei/internal/domain/testimonial"
)

// ErrGatewayNotConfigured is returned by gateway calls when no endpoint was
// configured. Bootstrap only warns about missing credentials; individual
// calls fail with this.
var ErrGatewayNotConfigured = errors.New("gateway endpoint is not configured")

// QueryLimit caps the initial bulk read of the testimonial table.
const QueryLimit = 100

// GatewaySubscription is a live insert feed handle.
//
// Rows is closed when the feed ends. Stop releases the feed and is idempotent:
// teardown paths may call it any number of times.
type GatewaySubscription interface {
	Rows() <-chan testimonial.Row
	Stop()
}

// Gateway is the remote testimonial data service consumed by the widget.
// Adapters may be backed by the bundled HTTP gateway or a test double.
type Gateway interface {
	Query(ctx context.Context, limit int) ([]testimonial.Row, error)
	Insert(ctx context.Context, draft testimonial.Draft) (testimonial.Row, error)
	Subscribe(ctx context.Context) (GatewaySubscription, error)
}
