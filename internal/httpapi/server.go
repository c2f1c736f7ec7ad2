// Package httpapi serves the read-only dashboard status API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"arcade-dashboard/internal/game"
	"arcade-dashboard/internal/model"
	"arcade-dashboard/internal/repository"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Scores is the score data the API exposes. *service.ScoreService
// implements it.
type Scores interface {
	GetPlayer(ctx context.Context, telegramID int64) (*model.Player, error)
	GameTotals(ctx context.Context, telegramID int64) ([]model.GameTotal, error)
	Total(telegramID int64) (int64, error)
}

// Sessions counts open game hosts. *host.Manager implements it.
type Sessions interface {
	Count() int
}

// Server bundles the router and its data sources.
type Server struct {
	r        *chi.Mux
	db       Pinger
	registry *game.Registry
	scores   Scores
	sessions Sessions
	started  time.Time
}

// New constructs a Server, installs middleware, and registers routes.
// db may be nil, in which case the database check is skipped.
func New(db Pinger, registry *game.Registry, scores Scores, sessions Sessions) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		db:       db,
		registry: registry,
		scores:   scores,
		sessions: sessions,
		started:  time.Now(),
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))

	s.r.Get("/health", s.handleHealth)
	s.r.Get("/games", s.handleGames)
	s.r.Get("/players/{id}/score", s.handlePlayerScore)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found")
	})
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.r }

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Games    int    `json:"games"`
	Sessions int    `json:"sessions"`
	Uptime   string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Database: "skipped",
		Games:    s.registry.Count(),
		Uptime:   time.Since(s.started).Truncate(time.Second).String(),
	}
	if s.sessions != nil {
		resp.Sessions = s.sessions.Count()
	}

	status := http.StatusOK
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check: database unreachable")
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	writeJSON(w, status, resp)
}

type gameResponse struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	infos := s.registry.List()
	out := make([]gameResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, gameResponse{
			Kind:        string(info.Kind),
			Name:        info.Name,
			Icon:        info.Icon,
			Description: info.Description,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type scoreResponse struct {
	PlayerID int64             `json:"player_id"`
	Username string            `json:"username"`
	LoggedIn bool              `json:"logged_in"`
	Score    int64             `json:"score"`
	Games    []model.GameTotal `json:"games"`
}

func (s *Server) handlePlayerScore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_player_id")
		return
	}

	p, err := s.scores.GetPlayer(r.Context(), id)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		writeError(w, r, http.StatusNotFound, "player_not_found")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("player_id", id).Msg("Failed to load player")
		writeError(w, r, http.StatusInternalServerError, "internal")
		return
	}

	totals, err := s.scores.GameTotals(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Int64("player_id", id).Msg("Failed to load game totals")
		writeError(w, r, http.StatusInternalServerError, "internal")
		return
	}
	if totals == nil {
		totals = []model.GameTotal{}
	}

	resp := scoreResponse{
		PlayerID: p.TelegramID,
		Username: p.Username,
		LoggedIn: p.LoggedIn,
		Score:    p.Score,
		Games:    totals,
	}
	// Logged-in players report the live counter
	if total, err := s.scores.Total(id); err == nil {
		resp.LoggedIn = true
		resp.Score = total
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string) {
	writeJSON(w, status, map[string]string{
		"error":      code,
		"request_id": chimw.GetReqID(r.Context()),
	})
}

// requestLogger logs each request with zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
