// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/wordlebot/internal/adapters/repository"
	service "github.com/okian/wordlebot/internal/app"
	"github.com/okian/wordlebot/internal/domain/leaderboard"
	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/internal/domain/parser"
	"github.com/okian/wordlebot/internal/domain/types"
)

// DefaultLimit is the leaderboard size when the request names none.
const DefaultLimit = 10

// MaxLimit caps the leaderboard size a request may ask for.
const MaxLimit = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	MessageDependencies
	LeaderboardDependencies
	UserDependencies
	ExportDependencies
	StatsProvider
}

// MessageDependencies records inbound result messages.
type MessageDependencies interface {
	Parse(text string) (parser.Result, bool)
	Record(ctx context.Context, m model.Message) (model.Outcome, error)
	// Submit queues m for async processing. Returns false on backpressure.
	Submit(ctx context.Context, m model.Message) bool
}

// LeaderboardDependencies ranks users over a window.
type LeaderboardDependencies interface {
	Window(scope service.Scope) leaderboard.Window
	Leaderboard(ctx context.Context, guildID string, scope service.Scope) (leaderboard.Board, error)
}

// UserDependencies answers per-user statistics.
type UserDependencies interface {
	Stats(ctx context.Context, guildID, userID string) (repository.Stats, error)
}

// ExportDependencies supplies raw records for spreadsheet export.
type ExportDependencies interface {
	LeaderboardDependencies
	Records(ctx context.Context, guildID string, scope service.Scope) ([]model.ScoreRecord, error)
	FailedScore() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	messagesHandler    *MessagesHandler
	leaderboardHandler *LeaderboardHandler
	userHandler        *UserHandler
	exportHandler      *ExportHandler
}

// NewServer creates a new API server with all handlers. defaultLimit applies
// to leaderboard requests without a limit parameter.
func NewServer(deps Dependencies, defaultLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		messagesHandler:    NewMessagesHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, defaultLimit),
		userHandler:        NewUserHandler(deps),
		exportHandler:      NewExportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", instrument("healthz", s.healthHandler.HandleHealth))
	mux.HandleFunc("/stats", instrument("stats", s.healthHandler.HandleStats))
	mux.HandleFunc("/messages", instrument("messages", s.messagesHandler.HandlePostMessage))
	mux.HandleFunc("/leaderboard", instrument("leaderboard", s.leaderboardHandler.HandleGetLeaderboard))
	mux.HandleFunc("/users/", instrument("user_stats", s.userHandler.HandleGetUserStats))
	mux.HandleFunc("/export.xlsx", instrument("export", s.exportHandler.HandleExport))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and storage errors to a status code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, repository.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrUnavailable):
		// storage details stay in the logs
		writeError(w, http.StatusServiceUnavailable, "unavailable", nil)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// toEntries converts a ranked board to its wire shape.
func toEntries(b leaderboard.Board) []types.Entry {
	out := make([]types.Entry, len(b.Entries))
	for i, e := range b.Entries {
		out[i] = types.Entry{
			Rank:        e.Rank,
			Medal:       e.Medal,
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			Average:     e.Average(),
			Mean:        e.Mean.String(),
			Games:       e.Games(),
		}
	}
	return out
}
