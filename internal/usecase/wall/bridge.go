package wall

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"koubei/internal/bootstrap/logging"
	"koubei/internal/domain/testimonial"
	"koubei/internal/ports"
)

// Bridge owns one live subscription and applies every emitted row through a
// callback, typically Store.Upsert. Exactly one subscription is active per
// started bridge; Stop releases it and is safe to call repeatedly and from
// any teardown path.
type Bridge struct {
	gateway ports.Gateway

	mu      sync.Mutex
	sub     ports.GatewaySubscription
	stopped chan struct{}
}

func NewBridge(gateway ports.Gateway) *Bridge {
	return &Bridge{gateway: gateway}
}

// Start subscribes and begins applying rows. Starting an already started
// bridge is an error; cycle through Stop first.
func (b *Bridge) Start(ctx context.Context, apply func(testimonial.Row)) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if apply == nil {
		return errors.New("apply callback is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		return errors.New("bridge already started")
	}

	sub, err := b.gateway.Subscribe(ctx)
	if err != nil {
		return err
	}
	b.sub = sub
	b.stopped = make(chan struct{})

	logCtx := logging.WithAttrs(ctx, slog.String("component", "wall.bridge"))
	go func(stopped chan struct{}) {
		defer close(stopped)
		for row := range sub.Rows() {
			apply(row)
		}
		logging.Info(logCtx, "insert feed ended")
	}(b.stopped)

	return nil
}

// Stop releases the subscription. Idempotent; a never-started bridge is a
// no-op. After Stop returns no further rows are applied.
func (b *Bridge) Stop() {
	b.mu.Lock()
	sub := b.sub
	stopped := b.stopped
	b.sub = nil
	b.stopped = nil
	b.mu.Unlock()

	if sub == nil {
		return
	}
	sub.Stop()
	<-stopped
}
