package chat

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/okian/wordlebot/internal/domain/model"
)

// Reactions used to acknowledge result messages.
const (
	ReactionInserted  = "✅"
	ReactionDuplicate = "⚠️"
)

// Reactor acknowledges recorded results by reacting to the source message.
type Reactor struct {
	session Session
}

// NewReactor creates a Reactor on session.
func NewReactor(session Session) *Reactor {
	return &Reactor{session: session}
}

// Acknowledge reacts with ✅ for a new result and ⚠️ for a duplicate. A
// result that could not be stored gets the generic failure reply. Other
// outcomes are ignored.
func (r *Reactor) Acknowledge(ctx context.Context, m model.Message, outcome model.Outcome) error { //nolint:gocritic // hugeParam: Message is a value type
	var emoji string
	switch outcome {
	case model.OutcomeFailed:
		if _, err := r.session.ChannelMessageSend(m.ChannelID, replyFailure, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("%w: failure reply: %w", ErrSend, err)
		}
		return nil
	case model.OutcomeInserted:
		emoji = ReactionInserted
	case model.OutcomeDuplicate:
		emoji = ReactionDuplicate
	default:
		return nil
	}
	if err := r.session.MessageReactionAdd(m.ChannelID, m.ID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: react %s: %w", ErrSend, emoji, err)
	}
	return nil
}
