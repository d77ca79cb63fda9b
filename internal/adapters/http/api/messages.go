// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/internal/domain/types"
)

// maxMessageBytes bounds a POST /messages body.
const maxMessageBytes = 16 << 10

// MessagesHandler handles inbound result messages.
type MessagesHandler struct {
	deps MessageDependencies
}

// NewMessagesHandler creates a new messages handler.
func NewMessagesHandler(deps MessageDependencies) *MessagesHandler {
	return &MessagesHandler{deps: deps}
}

func validateMessage(req types.MessageRequest) error { //nolint:gocritic // hugeParam: request is a value type
	switch {
	case strings.TrimSpace(req.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(req.Content) == "":
		return errors.New("missing content")
	}
	return nil
}

// HandlePostMessage handles POST /messages. The message is recorded before
// the response is written and the outcome returned. With ?async=true it is
// queued instead and 202 is returned; message_id is then required.
func (h *MessagesHandler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_message"
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
		return
	}

	var req types.MessageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large",
				fmt.Errorf("%s: %w: limit is %d bytes", op, ErrPayloadTooLarge, tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := validateMessage(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	name := req.UserName
	if strings.TrimSpace(name) == "" {
		name = req.UserID
	}
	m := model.Message{
		ID:         req.MessageID,
		GuildID:    req.GuildID,
		ChannelID:  req.ChannelID,
		AuthorID:   req.UserID,
		AuthorName: name,
		Content:    req.Content,
		ReceivedAt: time.Now(),
	}

	res, matched := h.deps.Parse(req.Content)
	resp := types.MessageResponse{Outcome: model.OutcomeNoMatch.String()}
	if matched {
		resp.PuzzleNumber = res.PuzzleNumber
		resp.Score = res.Score
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		if strings.TrimSpace(m.ID) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: missing message_id", op, ErrBadRequest))
			return
		}
		if !h.deps.Submit(r.Context(), m) {
			writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%s: %w", op, ErrBackpressure))
			return
		}
		resp.Outcome = "accepted"
		writeJSON(w, http.StatusAccepted, resp)
		return
	}

	outcome, err := h.deps.Record(r.Context(), m)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp.Outcome = outcome.String()
	status := http.StatusOK
	if outcome == model.OutcomeInserted {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}
