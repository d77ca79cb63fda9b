// Package chat connects the score tracker to Discord: it turns gateway
// messages into model.Message values, runs prefix commands, reacts to
// recorded results and mirrors logs into a channel.
package chat

import (
	"io"

	"github.com/bwmarrin/discordgo"
)

// Session is the subset of *discordgo.Session the adapter uses.
type Session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelFileSend(channelID, name string, r io.Reader, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

var _ Session = (*discordgo.Session)(nil)

// maxMessageLen is Discord's limit for a message body.
const maxMessageLen = 2000

// truncate cuts s to at most limit bytes, marking the cut.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	const ellipsis = "…"
	cut := limit - len(ellipsis)
	// step back to a rune boundary
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + ellipsis
}
