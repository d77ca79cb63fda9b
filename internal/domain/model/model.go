// Package model contains domain models passed between layers.
package model

import "time"

// Message is an inbound chat message handed to the core. It carries no
// reference to chat-platform objects.
type Message struct {
	ID         string            // platform message id, used for redelivery dedupe
	GuildID    string            // empty for direct messages or unscoped deployments
	ChannelID  string            // where acknowledgements and replies go
	AuthorID   string            // stable user identifier
	AuthorName string            // display name at the time of sending
	Content    string            // raw text
	Mentions   map[string]string // mentioned user id to display name
	ReceivedAt time.Time         // gateway receive time
}

// ScoreRecord is one persisted Wordle result.
type ScoreRecord struct {
	ID           int64
	GuildID      string
	UserID       string
	DisplayName  string
	PuzzleNumber int
	Score        int
	RecordedAt   time.Time
}

// Outcome is the result of feeding a message through the recording pipeline.
type Outcome int

const (
	// OutcomeNoMatch means the message did not contain a Wordle result.
	OutcomeNoMatch Outcome = iota
	// OutcomeInserted means a new score was stored.
	OutcomeInserted
	// OutcomeDuplicate means the user already has a score for that puzzle.
	OutcomeDuplicate
	// OutcomeFailed means the result could not be stored.
	OutcomeFailed
)

// String returns the wire name used by the HTTP API and logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFailed:
		return "failed"
	default:
		return "no_match"
	}
}
