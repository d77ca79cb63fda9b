// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	service "github.com/okian/wordlebot/internal/app"
	"github.com/okian/wordlebot/internal/domain/types"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps         LeaderboardDependencies
	defaultLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, defaultLimit int) *LeaderboardHandler {
	if defaultLimit < 1 || defaultLimit > MaxLimit {
		defaultLimit = DefaultLimit
	}
	return &LeaderboardHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?guild_id=&scope=week|all&limit=N.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
		return
	}
	q := r.URL.Query()

	n := h.defaultLimit
	if limitStr := q.Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: limit must be a positive integer", op, ErrBadRequest))
			return
		}
		if n > MaxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%s: %w: limit above %d", op, ErrBadRequest, MaxLimit))
			return
		}
	}

	scope := service.ParseScope(q.Get("scope"))
	window := h.deps.Window(scope)
	board, err := h.deps.Leaderboard(r.Context(), q.Get("guild_id"), scope)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := types.Leaderboard{
		Scope:   string(scope),
		Entries: toEntries(board.Top(n)),
	}
	if !window.IsAllTime() {
		since := window.Since
		resp.Since = &since
	}
	writeJSON(w, http.StatusOK, resp)
}
