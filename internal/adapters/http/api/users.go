// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/wordlebot/internal/domain/types"
)

// UserHandler handles per-user requests.
type UserHandler struct {
	deps UserDependencies
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps UserDependencies) *UserHandler {
	return &UserHandler{deps: deps}
}

// HandleGetUserStats handles GET /users/{user_id}/stats?guild_id= requests.
func (h *UserHandler) HandleGetUserStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_user_stats"
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/users/")
	userID, ok := strings.CutSuffix(rest, "/stats")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: invalid user id", op, ErrBadRequest))
		return
	}

	st, err := h.deps.Stats(r.Context(), r.URL.Query().Get("guild_id"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.UserStats{
		UserID:      st.UserID,
		DisplayName: st.DisplayName,
		Average:     st.Average(),
		Games:       st.Games(),
	})
}
