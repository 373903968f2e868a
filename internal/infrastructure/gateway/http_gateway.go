package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"koubei/internal/bootstrap/config"
	"koubei/internal/bootstrap/logging"
	"koubei/internal/domain/testimonial"
	"koubei/internal/errs"
	"koubei/internal/ports"
)

// Client talks to a testimonial data gateway over HTTP, with the live insert
// feed carried on a websocket. It satisfies ports.Gateway.
type Client struct {
	baseURL    string
	accessKey  string
	table      string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

var _ ports.Gateway = (*Client)(nil)

// NewClient builds a gateway client from config. Missing endpoint or key is
// not fatal here: construction logs a warning and every call fails with
// ports.ErrGatewayNotConfigured until configuration is fixed.
func NewClient(ctx context.Context, cfg config.GatewayConfig) *Client {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "gateway.client"))

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		logging.Warn(logCtx, "gateway url missing, calls will fail until configured")
	}

	table := strings.TrimSpace(cfg.Table)
	if table == "" {
		table = "testimonials"
	}

	return &Client{
		baseURL:    baseURL,
		accessKey:  strings.TrimSpace(cfg.AccessKey),
		table:      table,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dialer:     websocket.DefaultDialer,
	}
}

func (c *Client) Query(ctx context.Context, limit int) ([]testimonial.Row, error) {
	if c.baseURL == "" {
		return nil, ports.ErrGatewayNotConfigured
	}
	if limit <= 0 || limit > ports.QueryLimit {
		limit = ports.QueryLimit
	}

	url := c.baseURL + "/rest/v1/" + c.table + "?limit=" + strconv.Itoa(limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(err, "build query request")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "query gateway")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway query failed: %s", gatewayMessage(resp))
	}

	var rows []testimonial.Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, errs.Wrap(err, "decode query response")
	}
	return rows, nil
}

func (c *Client) Insert(ctx context.Context, draft testimonial.Draft) (testimonial.Row, error) {
	if c.baseURL == "" {
		return testimonial.Row{}, ports.ErrGatewayNotConfigured
	}

	payload, err := json.Marshal(draft.Normalized())
	if err != nil {
		return testimonial.Row{}, errs.Wrap(err, "marshal draft")
	}

	url := c.baseURL + "/rest/v1/" + c.table
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return testimonial.Row{}, errs.Wrap(err, "build insert request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return testimonial.Row{}, errs.Wrap(err, "insert via gateway")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return testimonial.Row{}, fmt.Errorf("gateway insert failed: %s", gatewayMessage(resp))
	}

	var row testimonial.Row
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		return testimonial.Row{}, errs.Wrap(err, "decode insert response")
	}
	return row, nil
}

func (c *Client) Subscribe(ctx context.Context) (ports.GatewaySubscription, error) {
	if c.baseURL == "" {
		return nil, ports.ErrGatewayNotConfigured
	}

	wsURL := toWebsocketURL(c.baseURL) + "/realtime/v1/" + c.table
	header := http.Header{}
	if c.accessKey != "" {
		header.Set("apikey", c.accessKey)
	}

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			defer func() { _ = resp.Body.Close() }()
			return nil, fmt.Errorf("gateway subscribe failed: %s", gatewayMessage(resp))
		}
		return nil, errs.Wrap(err, "dial gateway feed")
	}

	sub := &wsSubscription{
		conn: conn,
		rows: make(chan testimonial.Row, 16),
		done: make(chan struct{}),
	}
	go sub.readLoop(logging.WithAttrs(ctx, slog.String("component", "gateway.subscription")))

	return sub, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.accessKey != "" {
		req.Header.Set("apikey", c.accessKey)
	}
}

// wsSubscription pumps feed rows from the websocket into a channel until the
// connection ends or Stop is called. Stop is idempotent.
type wsSubscription struct {
	conn     *websocket.Conn
	rows     chan testimonial.Row
	done     chan struct{}
	stopOnce sync.Once
}

func (s *wsSubscription) Rows() <-chan testimonial.Row {
	return s.rows
}

func (s *wsSubscription) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *wsSubscription) readLoop(ctx context.Context) {
	defer close(s.rows)
	defer s.Stop()

	for {
		var row testimonial.Row
		if err := s.conn.ReadJSON(&row); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Warn(ctx, "feed read ended", slog.Any("err", errs.Loggable(err)))
			}
			return
		}
		select {
		case s.rows <- row:
		case <-s.done:
			return
		}
	}
}

func toWebsocketURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	default:
		return baseURL
	}
}

// gatewayMessage extracts the gateway's reported reason from an error
// response so it can be surfaced to the user verbatim.
func gatewayMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return resp.Status
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Message) != "" {
		return payload.Message
	}
	return resp.Status
}
