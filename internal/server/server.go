// Package server exposes the HTTP surface: the /chat endpoint consumed by the
// Telegram Mini App, Prometheus metrics, and health probes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/ebelyakova/zapomni/internal/chat"
	"github.com/ebelyakova/zapomni/internal/health"
	"github.com/ebelyakova/zapomni/internal/observe"
)

// ChatHandler is the chat service surface the server depends on.
type ChatHandler interface {
	Handle(ctx context.Context, req chat.Request) (*chat.Response, error)
}

// Server is the HTTP handler for the whole service.
type Server struct {
	chat    ChatHandler
	log     *slog.Logger
	handler http.Handler
}

// New assembles the router. The Mini App runs inside Telegram's webview, so
// CORS must admit any origin and the headers Telegram clients send.
func New(chatSvc ChatHandler, healthH *health.Handler, metrics *observe.Metrics, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{chat: chatSvc, log: log}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(observe.Middleware(metrics))

	r.Post("/chat", s.handleChat)
	r.Handle("/metrics", promhttp.Handler())
	if healthH != nil {
		r.Get("/healthz", healthH.Healthz)
		r.Get("/readyz", healthH.Readyz)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"authorization", "x-client-info", "apikey", "content-type"},
		OptionsSuccessStatus: http.StatusNoContent,
	})
	s.handler = c.Handler(r)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleChat decodes the request, runs the chat service, and writes the
// response. Service-level validation errors become 400s; everything else
// that fails is an opaque 500.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := s.chat.Handle(r.Context(), req)
	if err != nil {
		if errors.Is(err, chat.ErrInvalidRequest) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("server: chat request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("server: encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
