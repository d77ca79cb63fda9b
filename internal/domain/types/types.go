// Package types contains the JSON wire types shared by the HTTP API and its clients.
package types

import "time"

// Entry represents a leaderboard entry.
type Entry struct {
	Rank        int     `json:"rank"`
	Medal       string  `json:"medal,omitempty"`
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	Average     float64 `json:"average"`
	Mean        string  `json:"mean"` // two-decimal rendering of Average
	Games       int     `json:"games"`
}

// Leaderboard is the body of GET /leaderboard.
type Leaderboard struct {
	Scope   string     `json:"scope"`
	Since   *time.Time `json:"since,omitempty"`
	Entries []Entry    `json:"entries"`
}

// MessageRequest is the body of POST /messages.
type MessageRequest struct {
	MessageID string `json:"message_id,omitempty"`
	GuildID   string `json:"guild_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Content   string `json:"content"`
}

// MessageResponse reports what happened to a submitted message.
type MessageResponse struct {
	Outcome      string `json:"outcome"`
	PuzzleNumber int    `json:"puzzle_number,omitempty"`
	Score        int    `json:"score,omitempty"`
}

// UserStats is the body of GET /users/{user_id}/stats.
type UserStats struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	Average     float64 `json:"average"`
	Games       int     `json:"games"`
}
