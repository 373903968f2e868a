package wall

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"koubei/internal/domain/testimonial"
)

func TestBridgeAppliesRows(t *testing.T) {
	gateway := &fakeGateway{}
	bridge := NewBridge(gateway)

	var mu sync.Mutex
	var applied []string
	err := bridge.Start(context.Background(), func(row testimonial.Row) {
		mu.Lock()
		applied = append(applied, row.ID)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	gateway.sub.rows <- rowWithID("a")
	gateway.sub.rows <- rowWithID("b")

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(applied)
		mu.Unlock()
		if n == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("applied %d rows, want 2", n)
		}
		time.Sleep(5 * time.Millisecond)
	}

	bridge.Stop()
	mu.Lock()
	defer mu.Unlock()
	if applied[0] != "a" || applied[1] != "b" {
		t.Fatalf("applied = %v", applied)
	}
}

func TestBridgeStartTwiceFails(t *testing.T) {
	bridge := NewBridge(&fakeGateway{})

	if err := bridge.Start(context.Background(), func(testimonial.Row) {}); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	defer bridge.Stop()

	if err := bridge.Start(context.Background(), func(testimonial.Row) {}); err == nil {
		t.Fatal("second Start() should fail")
	}
}

func TestBridgeStopIsIdempotent(t *testing.T) {
	gateway := &fakeGateway{}
	bridge := NewBridge(gateway)

	if err := bridge.Start(context.Background(), func(testimonial.Row) {}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	bridge.Stop()
	bridge.Stop()
	bridge.Stop()

	if gateway.sub.stopped < 1 {
		t.Fatal("subscription never stopped")
	}
}

func TestBridgeStopBeforeStartIsNoOp(t *testing.T) {
	bridge := NewBridge(&fakeGateway{})
	bridge.Stop()
}

func TestBridgeRestartAfterStop(t *testing.T) {
	gateway := &fakeGateway{}
	bridge := NewBridge(gateway)

	if err := bridge.Start(context.Background(), func(testimonial.Row) {}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	bridge.Stop()

	gateway.sub = nil
	if err := bridge.Start(context.Background(), func(testimonial.Row) {}); err != nil {
		t.Fatalf("restart Start() error = %v", err)
	}
	bridge.Stop()
}

func TestBridgeSurfacesSubscribeError(t *testing.T) {
	cause := errors.New("realtime unavailable")
	bridge := NewBridge(&fakeGateway{subscribeErr: cause})

	if err := bridge.Start(context.Background(), func(testimonial.Row) {}); !errors.Is(err, cause) {
		t.Fatalf("Start() error = %v, want %v", err, cause)
	}
	bridge.Stop()
}
