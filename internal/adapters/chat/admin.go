package chat

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/okian/wordlebot/internal/adapters/export"
	service "github.com/okian/wordlebot/internal/app"
	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/internal/domain/scoring"
	"github.com/okian/wordlebot/pkg/logger"
)

// maxDupeGroups caps how many duplicate groups one reply lists.
const maxDupeGroups = 25

var (
	mentionRe = regexp.MustCompile(`^<@!?(\d+)>$`)
	userIDRe  = regexp.MustCompile(`^\d+$`)
)

// parseUser reads a mention or raw user ID and resolves a display name from
// the message mentions when present.
func parseUser(token string, m model.Message) (id, name string, err error) { //nolint:gocritic // hugeParam: Message is a value type
	if sub := mentionRe.FindStringSubmatch(token); sub != nil {
		id = sub[1]
	} else if userIDRe.MatchString(token) {
		id = token
	} else {
		return "", "", fmt.Errorf("%w: %q is not a user mention or id", ErrUsage, token)
	}
	return id, m.Mentions[id], nil
}

// adminScore parses "<@user|id> <puzzle> <1-6|X>".
func (d *Dispatcher) adminScore(m model.Message, args []string) (service.AdminScore, error) { //nolint:gocritic // hugeParam: Message is a value type
	if len(args) < 3 {
		return service.AdminScore{}, fmt.Errorf("%w: expected a user, a puzzle number and a score", ErrUsage)
	}
	id, name, err := parseUser(args[0], m)
	if err != nil {
		return service.AdminScore{}, err
	}
	puzzle, err := strconv.Atoi(strings.ReplaceAll(args[1], ",", ""))
	if err != nil || puzzle <= 0 {
		return service.AdminScore{}, fmt.Errorf("%w: %q is not a puzzle number", ErrUsage, args[1])
	}
	score, err := scoring.ParseGuess(args[2], d.svc.FailedScore())
	if err != nil {
		return service.AdminScore{}, fmt.Errorf("%w: %q is not a score", ErrUsage, args[2])
	}
	return service.AdminScore{
		GuildID:      m.GuildID,
		UserID:       id,
		DisplayName:  name,
		PuzzleNumber: puzzle,
		Score:        score,
	}, nil
}

func (d *Dispatcher) cmdAddScore(ctx context.Context, m model.Message, args []string) error { //nolint:gocritic // hugeParam: Message is a value type
	a, err := d.adminScore(m, args)
	if err != nil {
		return err
	}
	if len(args) > 3 {
		at, err := d.dates.Parse(strings.Join(args[3:], " "), d.now(), d.loc)
		if err != nil {
			return err
		}
		a.RecordedAt = at
	}

	outcome, err := d.svc.AddScore(ctx, a)
	if err != nil {
		return err
	}
	label := scoring.Label(a.Score, d.svc.FailedScore())
	if outcome == model.OutcomeDuplicate {
		d.reply(ctx, m.ChannelID, fmt.Sprintf("<@%s> already has a score for Wordle %d. Use `%ssetscore` to change it.", a.UserID, a.PuzzleNumber, d.prefix))
		return nil
	}
	d.reply(ctx, m.ChannelID, fmt.Sprintf("Recorded Wordle %d score %s/6 for <@%s>.", a.PuzzleNumber, label, a.UserID))
	return nil
}

func (d *Dispatcher) cmdSetScore(ctx context.Context, m model.Message, args []string) error { //nolint:gocritic // hugeParam: Message is a value type
	if len(args) != 3 {
		return fmt.Errorf("%w: expected a user, a puzzle number and a score", ErrUsage)
	}
	a, err := d.adminScore(m, args)
	if err != nil {
		return err
	}
	replaced, err := d.svc.OverwriteScore(ctx, a)
	if err != nil {
		return err
	}
	verb := "Created"
	if replaced {
		verb = "Updated"
	}
	d.reply(ctx, m.ChannelID, fmt.Sprintf("%s Wordle %d for <@%s>: %s/6.", verb, a.PuzzleNumber, a.UserID, scoring.Label(a.Score, d.svc.FailedScore())))
	return nil
}

func (d *Dispatcher) cmdDupes(ctx context.Context, m model.Message, _ []string) error { //nolint:gocritic // hugeParam: Message is a value type
	groups, err := d.svc.Duplicates(ctx, m.GuildID)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		d.reply(ctx, m.ChannelID, "No duplicate submissions found.")
		return nil
	}

	failed := d.svc.FailedScore()
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d users with several results on one day:\n", len(groups))
	for i, g := range groups {
		if i == maxDupeGroups {
			fmt.Fprintf(&b, "…and %d more\n", len(groups)-i)
			break
		}
		parts := make([]string, len(g.Records))
		for j, r := range g.Records {
			parts[j] = fmt.Sprintf("#%d (%s)", r.PuzzleNumber, scoring.Label(r.Score, failed))
		}
		fmt.Fprintf(&b, "**%s** on %s: %s\n", g.Records[0].DisplayName, g.Day, strings.Join(parts, ", "))
	}
	fmt.Fprintf(&b, "Run `%scleandupes` to keep only the earliest of each.", d.prefix)
	d.reply(ctx, m.ChannelID, b.String())
	return nil
}

func (d *Dispatcher) cmdCleanDupes(ctx context.Context, m model.Message, _ []string) error { //nolint:gocritic // hugeParam: Message is a value type
	n, err := d.svc.CleanDuplicates(ctx, m.GuildID)
	if err != nil {
		return err
	}
	d.reply(ctx, m.ChannelID, fmt.Sprintf("Removed %d duplicate entries.", n))
	return nil
}

func (d *Dispatcher) cmdReset(ctx context.Context, m model.Message, _ []string) error { //nolint:gocritic // hugeParam: Message is a value type
	n, err := d.svc.Reset(ctx, m.GuildID)
	if err != nil {
		return err
	}
	d.logger.Warn(ctx, "leaderboard reset from chat",
		logger.String("user_id", m.AuthorID),
		logger.String("guild_id", m.GuildID),
		logger.Int64("deleted", n),
	)
	d.reply(ctx, m.ChannelID, fmt.Sprintf("Archives cleared. %d entries removed.", n))
	return nil
}

func (d *Dispatcher) cmdLogs(ctx context.Context, m model.Message, args []string) error { //nolint:gocritic // hugeParam: Message is a value type
	if d.logs == nil {
		d.reply(ctx, m.ChannelID, "Log mirroring is not configured.")
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: expected on or off", ErrUsage)
	}
	switch strings.ToLower(args[0]) {
	case "on", "enable":
		d.logs.Enable(m.ChannelID)
		d.logger.Info(ctx, "log mirroring enabled", logger.String("channel_id", m.ChannelID))
		d.reply(ctx, m.ChannelID, "Terminal logs are now being sent to this channel.")
	case "off", "disable":
		d.logs.Disable()
		d.logger.Info(ctx, "log mirroring disabled")
		d.reply(ctx, m.ChannelID, "Terminal log capture disabled.")
	default:
		return fmt.Errorf("%w: expected on or off, got %q", ErrUsage, args[0])
	}
	return nil
}

func (d *Dispatcher) cmdExport(ctx context.Context, m model.Message, _ []string) error { //nolint:gocritic // hugeParam: Message is a value type
	board, err := d.svc.Leaderboard(ctx, m.GuildID, service.ScopeAll)
	if err != nil {
		return err
	}
	recs, err := d.svc.Records(ctx, m.GuildID, service.ScopeAll)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, board, recs, d.svc.FailedScore()); err != nil {
		return err
	}
	name := fmt.Sprintf("wordle-scores-%s.xlsx", d.now().In(d.loc).Format("2006-01-02"))
	if _, err := d.session.ChannelFileSend(m.ChannelID, name, &buf, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: export: %w", ErrSend, err)
	}
	return nil
}
