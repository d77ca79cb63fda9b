// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/wordlebot/internal/adapters/export"
	service "github.com/okian/wordlebot/internal/app"
	"github.com/okian/wordlebot/pkg/logger"
)

// ExportHandler serves the XLSX export.
type ExportHandler struct {
	deps ExportDependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps ExportDependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleExport handles GET /export.xlsx?guild_id= with the all-time board
// and every raw score.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
		return
	}
	ctx := r.Context()
	guildID := r.URL.Query().Get("guild_id")

	board, err := h.deps.Leaderboard(ctx, guildID, service.ScopeAll)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	recs, err := h.deps.Records(ctx, guildID, service.ScopeAll)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Buffer so a failure can still become a JSON error.
	var buf bytes.Buffer
	if err := export.Write(&buf, board, recs, h.deps.FailedScore()); err != nil {
		logger.Get().Error(ctx, "export failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	filename := fmt.Sprintf("wordle-scores-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
