// Package leaderboard aggregates score records into ranked boards. It is pure:
// callers pass records already filtered to the wanted window.
package leaderboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/internal/domain/scoring"
)

// EmptyMessage is rendered for a board without entries.
const EmptyMessage = "No scores recorded yet!"

var medals = [...]string{"🥇", "🥈", "🥉"}

// Entry is one ranked user.
type Entry struct {
	Rank        int
	Medal       string
	UserID      string
	DisplayName string
	Mean        scoring.Mean
}

// Games returns the number of results counted for the entry.
func (e Entry) Games() int { return e.Mean.Count }

// Average returns the mean score as a float.
func (e Entry) Average() float64 { return e.Mean.Value() }

// Board is a ranked leaderboard.
type Board struct {
	Entries []Entry
}

// Empty reports whether the board has no entries.
func (b Board) Empty() bool { return len(b.Entries) == 0 }

// Top returns a board holding at most the first n entries. n <= 0 keeps all.
func (b Board) Top(n int) Board {
	if n <= 0 || n >= len(b.Entries) {
		return b
	}
	return Board{Entries: b.Entries[:n]}
}

// Find returns the entry for userID.
func (b Board) Find(userID string) (Entry, bool) {
	for _, e := range b.Entries {
		if e.UserID == userID {
			return e, true
		}
	}
	return Entry{}, false
}

type aggregate struct {
	mean   scoring.Mean
	name   string
	latest model.ScoreRecord
}

// Rank groups records by user and orders them by mean ascending, then games
// descending, then user ID ascending. Ranks run 1..N in that order and the
// first three entries get medals.
func Rank(records []model.ScoreRecord) Board {
	if len(records) == 0 {
		return Board{}
	}

	byUser := make(map[string]*aggregate, len(records))
	for _, r := range records {
		a, ok := byUser[r.UserID]
		if !ok {
			a = &aggregate{latest: r}
			byUser[r.UserID] = a
		}
		a.mean.Add(r.Score)
		if newer(r, a.latest) {
			a.latest = r
		}
	}

	entries := make([]Entry, 0, len(byUser))
	for userID, a := range byUser {
		entries = append(entries, Entry{
			UserID:      userID,
			DisplayName: a.latest.DisplayName,
			Mean:        a.mean,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return less(entries[i], entries[j])
	})

	for i := range entries {
		entries[i].Rank = i + 1
		if i < len(medals) {
			entries[i].Medal = medals[i]
		}
	}
	return Board{Entries: entries}
}

func less(a, b Entry) bool {
	if c := a.Mean.Compare(b.Mean); c != 0 {
		return c < 0
	}
	if a.Mean.Count != b.Mean.Count {
		return a.Mean.Count > b.Mean.Count
	}
	return a.UserID < b.UserID
}

// newer reports whether r was recorded after cur. IDs break timestamp ties.
func newer(r, cur model.ScoreRecord) bool {
	if !r.RecordedAt.Equal(cur.RecordedAt) {
		return r.RecordedAt.After(cur.RecordedAt)
	}
	return r.ID > cur.ID
}

// Render formats the board as chat text, one two-line block per entry.
func (b Board) Render() string {
	if b.Empty() {
		return EmptyMessage
	}
	var sb strings.Builder
	for i, e := range b.Entries {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if e.Medal != "" {
			sb.WriteString(e.Medal)
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "**%d. %s**\n   Avg: %s | Games: %d", e.Rank, e.DisplayName, e.Mean, e.Games())
	}
	return sb.String()
}
