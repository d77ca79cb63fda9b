package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/okian/wordlebot/internal/adapters/repository"
	service "github.com/okian/wordlebot/internal/app"
	"github.com/okian/wordlebot/internal/domain/leaderboard"
	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/pkg/logger"
	"github.com/okian/wordlebot/pkg/metrics"
)

// Service is what the dispatcher needs from the core.
type Service interface {
	Submit(ctx context.Context, m model.Message) bool
	Window(scope service.Scope) leaderboard.Window
	Leaderboard(ctx context.Context, guildID string, scope service.Scope) (leaderboard.Board, error)
	Records(ctx context.Context, guildID string, scope service.Scope) ([]model.ScoreRecord, error)
	Stats(ctx context.Context, guildID, userID string) (repository.Stats, error)
	AddScore(ctx context.Context, a service.AdminScore) (model.Outcome, error)
	OverwriteScore(ctx context.Context, a service.AdminScore) (bool, error)
	Duplicates(ctx context.Context, guildID string) ([]repository.DuplicateGroup, error)
	CleanDuplicates(ctx context.Context, guildID string) (int64, error)
	Reset(ctx context.Context, guildID string) (int64, error)
	FailedScore() int
}

// Replies shared by several commands.
const (
	replyFailure   = "Something went wrong, please try again later."
	replyOwnerOnly = "That command is restricted to the bot owner."
	replyNoStats   = "You haven't recorded any Wordle scores yet!"
	replyQueueFull = "I'm a little busy right now, please post that result again in a minute."
)

const (
	nextOpenLayout = "Monday, January 02 at 03:04 PM MST"
	statusLayout   = "2006-01-02 15:04:05 MST"

	colorGold  = 0xF1C40F
	colorBlue  = 0x3498DB
	colorGreen = 0x2ECC71

	// maxEmbedDescription is Discord's limit for an embed description.
	maxEmbedDescription = 4096
)

type handlerFunc func(ctx context.Context, m model.Message, args []string) error

type command struct {
	name      string
	usage     string
	ownerOnly bool
	run       handlerFunc
}

// Dispatcher routes chat messages: prefix commands are executed, everything
// else is submitted to the recording pipeline.
type Dispatcher struct {
	session Session
	svc     Service
	dates   *DateParser

	prefix  string
	ownerID string
	gate    Gate
	limit   int
	logs    *LogSink
	loc     *time.Location
	now     func() time.Time

	commands map[string]*command
	help     []*command

	logger logger.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(session Session, svc Service, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		session: session,
		svc:     svc,
		dates:   NewDateParser(),
		prefix:  "!",
		limit:   10,
		loc:     time.UTC,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.Get().Named("chat")
	}
	d.registerCommands()
	return d
}

func (d *Dispatcher) registerCommands() {
	d.commands = make(map[string]*command)
	add := func(c *command, aliases ...string) {
		d.commands[c.name] = c
		for _, a := range aliases {
			d.commands[a] = c
		}
		d.help = append(d.help, c)
	}

	add(&command{name: "leaderboard", usage: "[week|all]", run: d.cmdLeaderboard}, "lb", "scores")
	add(&command{name: "stats", run: d.cmdStats}, "mystats")
	add(&command{name: "help", run: d.cmdHelp}, "wordlehelp", "help_wordle")

	add(&command{name: "showlb", usage: "[week|all]", ownerOnly: true, run: d.cmdShowLeaderboard}, "showleaderboard")
	add(&command{name: "lbstatus", ownerOnly: true, run: d.cmdStatus}, "lbwhen")
	add(&command{name: "addscore", usage: "<@user|id> <puzzle> <1-6|X> [date]", ownerOnly: true, run: d.cmdAddScore})
	add(&command{name: "setscore", usage: "<@user|id> <puzzle> <1-6|X>", ownerOnly: true, run: d.cmdSetScore})
	add(&command{name: "dupes", ownerOnly: true, run: d.cmdDupes}, "duplicates")
	add(&command{name: "cleandupes", ownerOnly: true, run: d.cmdCleanDupes})
	add(&command{name: "resetlb", ownerOnly: true, run: d.cmdReset}, "reset_leaderboard")
	add(&command{name: "logs", usage: "on|off", ownerOnly: true, run: d.cmdLogs})
	add(&command{name: "export", ownerOnly: true, run: d.cmdExport})
}

// OnMessageCreate is the discordgo handler for new messages.
func (d *Dispatcher) OnMessageCreate(_ *discordgo.Session, mc *discordgo.MessageCreate) {
	if mc == nil || mc.Message == nil || mc.Author == nil || mc.Author.Bot {
		return
	}
	d.Handle(context.Background(), FromDiscord(mc.Message, mc.Member))
}

// FromDiscord converts a gateway message. The display name prefers the
// guild nickname, then the global name, then the username.
func FromDiscord(msg *discordgo.Message, member *discordgo.Member) model.Message {
	m := model.Message{
		ID:         msg.ID,
		GuildID:    msg.GuildID,
		ChannelID:  msg.ChannelID,
		Content:    msg.Content,
		ReceivedAt: msg.Timestamp,
	}
	if msg.Author != nil {
		m.AuthorID = msg.Author.ID
		m.AuthorName = displayName(msg.Author, member)
	}
	if len(msg.Mentions) > 0 {
		m.Mentions = make(map[string]string, len(msg.Mentions))
		for _, u := range msg.Mentions {
			if u != nil {
				m.Mentions[u.ID] = displayName(u, nil)
			}
		}
	}
	if m.ReceivedAt.IsZero() {
		m.ReceivedAt = time.Now()
	}
	return m
}

func displayName(u *discordgo.User, member *discordgo.Member) string {
	switch {
	case member != nil && member.Nick != "":
		return member.Nick
	case u.GlobalName != "":
		return u.GlobalName
	default:
		return u.Username
	}
}

// Handle routes one message.
func (d *Dispatcher) Handle(ctx context.Context, m model.Message) { //nolint:gocritic // hugeParam: Message is a value type
	name, args, ok := d.parseCommand(m.Content)
	if !ok {
		if !d.svc.Submit(ctx, m) {
			d.logger.Warn(ctx, "message dropped on backpressure", logger.String("message_id", m.ID))
			d.reply(ctx, m.ChannelID, replyQueueFull)
		}
		return
	}

	cmd, found := d.commands[name]
	if !found {
		return
	}
	metrics.RecordChatCommand(cmd.name)

	if cmd.ownerOnly && (d.ownerID == "" || m.AuthorID != d.ownerID) {
		d.logger.Warn(ctx, "owner command refused",
			logger.String("command", cmd.name),
			logger.String("user_id", m.AuthorID),
		)
		d.reply(ctx, m.ChannelID, replyOwnerOnly)
		return
	}

	if err := cmd.run(ctx, m, args); err != nil {
		d.fail(ctx, m, cmd, err)
	}
}

func (d *Dispatcher) fail(ctx context.Context, m model.Message, cmd *command, err error) { //nolint:gocritic // hugeParam: Message is a value type
	switch {
	case errors.Is(err, ErrUsage), errors.Is(err, ErrInvalidDate), errors.Is(err, service.ErrInvalidInput):
		d.reply(ctx, m.ChannelID, fmt.Sprintf("%s\nUsage: `%s%s %s`", unwrapReason(err), d.prefix, cmd.name, cmd.usage))
	default:
		metrics.RecordErrorByComponent("chat", cmd.name)
		d.logger.Error(ctx, "command failed",
			logger.String("command", cmd.name),
			logger.String("user_id", m.AuthorID),
			logger.Error(err),
		)
		d.reply(ctx, m.ChannelID, replyFailure)
	}
}

// unwrapReason returns err's message without the sentinel prefix.
func unwrapReason(err error) string {
	msg := err.Error()
	for _, s := range []error{ErrUsage, ErrInvalidDate, service.ErrInvalidInput} {
		msg = strings.TrimPrefix(msg, s.Error()+": ")
	}
	return msg
}

// parseCommand splits "!name arg..." into its lowercase name and arguments.
func (d *Dispatcher) parseCommand(content string) (name string, args []string, ok bool) {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, d.prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(s, d.prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

func (d *Dispatcher) reply(ctx context.Context, channelID, content string) {
	if _, err := d.session.ChannelMessageSend(channelID, truncate(content, maxMessageLen), discordgo.WithContext(ctx)); err != nil {
		metrics.RecordErrorByComponent("chat", "send")
		d.logger.Warn(ctx, "failed to send reply", logger.String("channel_id", channelID), logger.Error(err))
	}
}

func (d *Dispatcher) replyEmbed(ctx context.Context, channelID string, e *discordgo.MessageEmbed) {
	if _, err := d.session.ChannelMessageSendEmbed(channelID, e, discordgo.WithContext(ctx)); err != nil {
		metrics.RecordErrorByComponent("chat", "send")
		d.logger.Warn(ctx, "failed to send embed", logger.String("channel_id", channelID), logger.Error(err))
	}
}

func scopeArg(args []string) service.Scope {
	if len(args) == 0 {
		return service.ScopeWeekly
	}
	return service.ParseScope(args[0])
}

func (d *Dispatcher) cmdLeaderboard(ctx context.Context, m model.Message, args []string) error { //nolint:gocritic // hugeParam: Message is a value type
	now := d.now()
	if !d.gate.Open(now) {
		d.reply(ctx, m.ChannelID, d.gateMessage(now))
		return nil
	}
	return d.sendBoard(ctx, m, scopeArg(args))
}

func (d *Dispatcher) cmdShowLeaderboard(ctx context.Context, m model.Message, args []string) error { //nolint:gocritic // hugeParam: Message is a value type
	return d.sendBoard(ctx, m, scopeArg(args))
}

func (d *Dispatcher) gateMessage(now time.Time) string {
	end := fmt.Sprintf("%02d:00", d.gate.EndHour)
	if d.gate.EndHour == 24 {
		end = "midnight"
	}
	return fmt.Sprintf("The weekly leaderboard is only available on %ss from %02d:00 to %s. Next available: %s",
		d.gate.Day, d.gate.StartHour, end, d.gate.NextOpening(now).In(d.loc).Format(nextOpenLayout))
}

func (d *Dispatcher) sendBoard(ctx context.Context, m model.Message, scope service.Scope) error { //nolint:gocritic // hugeParam: Message is a value type
	board, err := d.svc.Leaderboard(ctx, m.GuildID, scope)
	if err != nil {
		return err
	}
	if board.Empty() {
		d.reply(ctx, m.ChannelID, leaderboard.EmptyMessage)
		return nil
	}

	e := &discordgo.MessageEmbed{
		Title:       "📊 All-Time Wordle Leaderboard",
		Description: truncate(board.Top(d.limit).Render(), maxEmbedDescription),
		Color:       colorGold,
	}
	if scope != service.ScopeAll {
		w := d.svc.Window(scope)
		e.Title = "📊 Weekly Wordle Leaderboard"
		e.Footer = &discordgo.MessageEmbedFooter{Text: "Week of " + w.Since.In(d.loc).Format("January 02")}
	}
	d.replyEmbed(ctx, m.ChannelID, e)
	return nil
}

func (d *Dispatcher) cmdStats(ctx context.Context, m model.Message, _ []string) error { //nolint:gocritic // hugeParam: Message is a value type
	st, err := d.svc.Stats(ctx, m.GuildID, m.AuthorID)
	if errors.Is(err, repository.ErrNotFound) {
		d.reply(ctx, m.ChannelID, replyNoStats)
		return nil
	}
	if err != nil {
		return err
	}
	d.replyEmbed(ctx, m.ChannelID, &discordgo.MessageEmbed{
		Title: "📈 Wordle Stats for " + st.DisplayName,
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Average Score", Value: st.Mean.String(), Inline: true},
			{Name: "Total Games", Value: fmt.Sprint(st.Games()), Inline: true},
		},
	})
	return nil
}

func (d *Dispatcher) cmdHelp(ctx context.Context, m model.Message, _ []string) error { //nolint:gocritic // hugeParam: Message is a value type
	var b strings.Builder
	for _, c := range d.help {
		if c.ownerOnly {
			continue
		}
		fmt.Fprintf(&b, "`%s%s", d.prefix, c.name)
		if c.usage != "" {
			fmt.Fprintf(&b, " %s", c.usage)
		}
		b.WriteString("`\n")
	}
	d.replyEmbed(ctx, m.ChannelID, &discordgo.MessageEmbed{
		Title:       "🎮 Wordle Bot Help",
		Description: "Track your Wordle scores automatically!",
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "How it works", Value: "Paste your Wordle result in any channel and it is recorded. ✅ means saved, ⚠️ means you already have a score for that puzzle."},
			{Name: "Commands", Value: b.String()},
			{Name: "Ranking", Value: "Lowest average wins; ties go to whoever played more games. A failed game (X/6) counts as " + fmt.Sprint(d.svc.FailedScore()) + "."},
			{Name: "Example Wordle Message", Value: "Wordle 1,234 4/6\n⬛⬛🟨⬛⬛\n🟨🟩⬛⬛⬛\n⬛🟩🟩🟩🟩\n🟩🟩🟩🟩🟩"},
		},
	})
	return nil
}

func (d *Dispatcher) cmdStatus(ctx context.Context, m model.Message, _ []string) error { //nolint:gocritic // hugeParam: Message is a value type
	now := d.now()
	next := "always open"
	if d.gate.Enabled {
		next = d.gate.NextOpening(now).In(d.loc).Format(statusLayout)
	}
	logs := "off"
	if d.logs != nil && d.logs.Channel() != "" {
		logs = "<#" + d.logs.Channel() + ">"
	}
	d.reply(ctx, m.ChannelID, fmt.Sprintf("Status report: %s\nLeaderboard access: %t\nNext: %s\nLog channel: %s",
		now.In(d.loc).Format(statusLayout), d.gate.Open(now), next, logs))
	return nil
}
