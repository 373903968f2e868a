package wall

import (
	"context"
	"errors"
	"testing"

	"koubei/internal/domain/testimonial"
	"koubei/internal/ports"
)

type fakeSubscription struct {
	rows    chan testimonial.Row
	stopped int
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{rows: make(chan testimonial.Row, 8)}
}

func (f *fakeSubscription) Rows() <-chan testimonial.Row { return f.rows }

func (f *fakeSubscription) Stop() {
	f.stopped++
	if f.stopped == 1 {
		close(f.rows)
	}
}

type fakeGateway struct {
	queryRows []testimonial.Row
	queryErr  error
	gotLimit  int

	inserted  []testimonial.Draft
	insertRow testimonial.Row
	insertErr error

	sub          *fakeSubscription
	subscribeErr error
}

func (f *fakeGateway) Query(ctx context.Context, limit int) ([]testimonial.Row, error) {
	f.gotLimit = limit
	return f.queryRows, f.queryErr
}

func (f *fakeGateway) Insert(ctx context.Context, draft testimonial.Draft) (testimonial.Row, error) {
	if f.insertErr != nil {
		return testimonial.Row{}, f.insertErr
	}
	f.inserted = append(f.inserted, draft)
	return f.insertRow, nil
}

func (f *fakeGateway) Subscribe(ctx context.Context) (ports.GatewaySubscription, error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	if f.sub == nil {
		f.sub = newFakeSubscription()
	}
	return f.sub, nil
}

func TestFetchUsesQueryLimit(t *testing.T) {
	gateway := &fakeGateway{queryRows: []testimonial.Row{rowWithID("a")}}
	service := NewService(gateway)

	rows, err := service.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "a" {
		t.Fatalf("Fetch() = %v", rows)
	}
	if gateway.gotLimit != ports.QueryLimit {
		t.Fatalf("query limit = %d, want %d", gateway.gotLimit, ports.QueryLimit)
	}
}

func TestFetchWrapsGatewayError(t *testing.T) {
	cause := errors.New("connection refused")
	service := NewService(&fakeGateway{queryErr: cause})

	if _, err := service.Fetch(context.Background()); !errors.Is(err, cause) {
		t.Fatalf("Fetch() error = %v, want wrapped %v", err, cause)
	}
}

func TestSubmitTrimsBeforeInsert(t *testing.T) {
	gateway := &fakeGateway{insertRow: rowWithID("new")}
	service := NewService(gateway)

	draft := testimonial.Draft{
		Name:         "  张三  ",
		Organization: " 口碑组 ",
		Rating:       5,
		Text:         "  好用  ",
	}
	row, err := service.Submit(context.Background(), draft)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if row.ID != "new" {
		t.Fatalf("Submit() row = %+v", row)
	}

	if len(gateway.inserted) != 1 {
		t.Fatalf("inserted %d drafts, want 1", len(gateway.inserted))
	}
	got := gateway.inserted[0]
	if got.Name != "张三" || got.Organization != "口碑组" || got.Text != "好用" {
		t.Fatalf("insert payload not trimmed: %+v", got)
	}
}

func TestSubmitValidationFailureSkipsGateway(t *testing.T) {
	gateway := &fakeGateway{}
	service := NewService(gateway)

	draft := testimonial.Draft{Organization: "org", Rating: 3, Text: "text"}
	if _, err := service.Submit(context.Background(), draft); !errors.Is(err, testimonial.ErrNameRequired) {
		t.Fatalf("Submit() error = %v, want %v", err, testimonial.ErrNameRequired)
	}
	if len(gateway.inserted) != 0 {
		t.Fatalf("gateway called despite validation failure: %v", gateway.inserted)
	}
}

func TestSubmitPassesGatewayReasonThrough(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	service := NewService(&fakeGateway{insertErr: cause})

	draft := testimonial.Draft{Name: "a", Organization: "b", Rating: 2, Text: "c"}
	if _, err := service.Submit(context.Background(), draft); !errors.Is(err, cause) {
		t.Fatalf("Submit() error = %v, want %v", err, cause)
	}
}

func TestServiceRequiresContext(t *testing.T) {
	service := NewService(&fakeGateway{})

	if _, err := service.Fetch(nil); err == nil {
		t.Fatal("Fetch(nil) should fail")
	}
	if _, err := service.Submit(nil, testimonial.Draft{}); err == nil {
		t.Fatal("Submit(nil) should fail")
	}
	if _, err := service.Subscribe(nil); err == nil {
		t.Fatal("Subscribe(nil) should fail")
	}
}
