package simulate

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/wordlebot/internal/domain/leaderboard"
	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/internal/domain/scoring"
	"github.com/okian/wordlebot/internal/domain/types"
	"github.com/okian/wordlebot/pkg/logger"
)

// Outcome names as served by POST /messages.
const (
	WantInserted  = "inserted"
	WantDuplicate = "duplicate"
	WantNoMatch   = "no_match"
)

const (
	randomFloatDivisor = 1000000
	failChance         = 0.04
	wordLength         = 5
)

var chatter = [...]string{
	"anyone else get wrecked today?",
	"wordle was brutal",
	"my streak is gone",
	"Wordle tomorrow, I promise",
	"who is doing the weekly recap",
}

var tiles = [...]string{"⬛", "🟨", "🟩"}

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, n).
func getRandomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// player is a synthetic user with a fixed skill level.
type player struct {
	id    string
	name  string
	skill float64 // expected guesses, 2.5 to 5.5
}

// Generate builds the messages for a run. Original results and chatter come
// first, resubmissions of already sent results come after them so every
// submission has a deterministic expected outcome when sent in order.
func Generate(ctx context.Context, cfg *Config) ([]Submission, error) {
	if cfg.Users < 1 || cfg.Puzzles < 1 || cfg.FirstPuzzle < 1 {
		return nil, fmt.Errorf("%w: users, puzzles and first puzzle must be positive", ErrConfig)
	}
	if !scoring.ValidSentinel(cfg.FailedScore) {
		return nil, fmt.Errorf("%w: failed score %d", ErrConfig, cfg.FailedScore)
	}
	logger.Get().Info(ctx, "generating messages",
		logger.Int("users", cfg.Users),
		logger.Int("puzzles", cfg.Puzzles))

	players := make([]player, cfg.Users)
	for i := range players {
		players[i] = player{
			id:    uuid.NewString(),
			name:  "player-" + strconv.Itoa(i+1),
			skill: 2.5 + 3*getRandomFloat(),
		}
	}

	var firsts, resubmits []Submission
	for p := 0; p < cfg.Puzzles; p++ {
		puzzle := cfg.FirstPuzzle + p
		for _, pl := range players {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("generation cancelled: %w", err)
			}
			score := pl.roll(cfg.FailedScore)
			content := ResultMessage(puzzle, score, cfg.FailedScore)
			sub := Submission{
				Request: request(cfg.GuildID, pl, content),
				Want:    WantInserted,
				Score:   score,
				Puzzle:  puzzle,
			}
			firsts = append(firsts, sub)

			if getRandomFloat() < cfg.Resubmit {
				again := sub
				again.Request = request(cfg.GuildID, pl, content)
				again.Want = WantDuplicate
				resubmits = append(resubmits, again)
			}
			if getRandomFloat() < cfg.Chatter {
				firsts = append(firsts, Submission{
					Request: request(cfg.GuildID, pl, chatter[getRandomInt(len(chatter))]),
					Want:    WantNoMatch,
				})
			}
		}
	}

	subs := append(firsts, resubmits...)
	logger.Get().Info(ctx, "generated messages",
		logger.Int("count", len(subs)),
		logger.Int("resubmits", len(resubmits)))
	return subs, nil
}

func request(guildID string, pl player, content string) types.MessageRequest {
	return types.MessageRequest{
		MessageID: uuid.NewString(),
		GuildID:   guildID,
		UserID:    pl.id,
		UserName:  pl.name,
		Content:   content,
	}
}

// roll draws a score around the player's skill.
func (p player) roll(failed int) int {
	if getRandomFloat() < failChance {
		return failed
	}
	g := int(p.skill + 2*getRandomFloat() - 1 + 0.5)
	return min(max(g, scoring.MinScore), scoring.MaxSolved)
}

// ResultMessage renders a shared Wordle result: the header line followed by
// one tile row per guess.
func ResultMessage(puzzle, score, failed int) string {
	var b strings.Builder
	b.WriteString("Wordle ")
	b.WriteString(formatPuzzle(puzzle))
	b.WriteString(" ")
	b.WriteString(scoring.Label(score, failed))
	b.WriteString("/6\n\n")

	rows := score
	if score == failed {
		rows = scoring.MaxSolved
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < wordLength; j++ {
			if i == rows-1 && score != failed {
				b.WriteString(tiles[2])
				continue
			}
			b.WriteString(tiles[getRandomInt(len(tiles))])
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatPuzzle writes n with comma thousands separators.
func formatPuzzle(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Expected ranks the results the server should hold after every submission
// has been processed.
func Expected(subs []Submission) leaderboard.Board {
	recs := make([]model.ScoreRecord, 0, len(subs))
	for _, s := range subs {
		if s.Want != WantInserted {
			continue
		}
		recs = append(recs, model.ScoreRecord{
			GuildID:      s.Request.GuildID,
			UserID:       s.Request.UserID,
			DisplayName:  s.Request.UserName,
			PuzzleNumber: s.Puzzle,
			Score:        s.Score,
		})
	}
	return leaderboard.Rank(recs)
}
