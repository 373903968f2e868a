package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"koubei/internal/bootstrap/logging"
	"koubei/internal/domain/testimonial"
	"koubei/internal/errs"
	"koubei/internal/ports"
)

// Server is the bundled reference gateway: a REST query/insert surface plus a
// websocket insert feed, matching the contract the widget's client consumes.
type Server struct {
	repo    ports.TestimonialRepository
	uow     ports.UnitOfWork
	hub     *Hub
	table   string
	authKey string
}

type ServerOptions struct {
	Table     string
	AccessKey string
}

func NewServer(repo ports.TestimonialRepository, uow ports.UnitOfWork, hub *Hub, options ServerOptions) *Server {
	table := strings.TrimSpace(options.Table)
	if table == "" {
		table = "testimonials"
	}
	return &Server{
		repo:    repo,
		uow:     uow,
		hub:     hub,
		table:   table,
		authKey: strings.TrimSpace(options.AccessKey),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requireAccessKey)

	r.Get("/rest/v1/"+s.table, s.handleQuery)
	r.Post("/rest/v1/"+s.table, s.handleInsert)
	r.Get("/realtime/v1/"+s.table, s.handleSubscribe)

	return r
}

// requireAccessKey checks the apikey header when a key is configured.
func (s *Server) requireAccessKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authKey != "" && r.Header.Get("apikey") != s.authKey {
			writeMessage(w, http.StatusUnauthorized, "invalid or missing api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithAttrs(r.Context(), slog.String("component", "httpapi.server"))

	limit := ports.QueryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeMessage(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	rows, err := s.repo.ListTestimonials(ctx, limit)
	if err != nil {
		logging.Error(ctx, "query testimonials failed", slog.Any("err", errs.Loggable(err)))
		writeMessage(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithAttrs(r.Context(), slog.String("component", "httpapi.server"))

	var draft testimonial.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft = draft.Normalized()
	if err := draft.Validate(); err != nil {
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	row := testimonial.Row{
		ID:           uuid.NewString(),
		Name:         draft.Name,
		Organization: draft.Organization,
		Rating:       draft.Rating,
		Text:         draft.Text,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(row)
	if err != nil {
		logging.Error(ctx, "marshal feed event failed", slog.Any("err", errs.Loggable(err)))
		writeMessage(w, http.StatusInternalServerError, "insert failed")
		return
	}

	// Row and feed event commit together; the broadcaster only ever sees
	// committed inserts.
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateTestimonial(txCtx, row); err != nil {
			return err
		}
		return s.repo.AppendFeedEvent(txCtx, ports.FeedEventCreate{
			RowJSON:   string(payload),
			CreatedAt: row.CreatedAt,
		})
	})
	if err != nil {
		logging.Error(ctx, "insert testimonial failed", slog.Any("err", errs.Loggable(err)))
		writeMessage(w, http.StatusInternalServerError, "insert failed")
		return
	}

	logging.Info(ctx, "testimonial inserted", slog.String("id", row.ID))
	writeJSON(w, http.StatusCreated, row)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithAttrs(r.Context(), slog.String("component", "httpapi.server"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(ctx, "websocket upgrade failed", slog.Any("err", errs.Loggable(err)))
		return
	}
	defer func() { _ = conn.Close() }()

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)
	logging.Info(ctx, "feed subscriber connected", slog.String("remote", conn.RemoteAddr().String()))

	// Drain the read side so client close frames are noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case row, ok := <-sub.rows:
			if !ok {
				return
			}
			if err := conn.WriteJSON(row); err != nil {
				logging.Warn(ctx, "feed write failed", slog.Any("err", errs.Loggable(err)))
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
