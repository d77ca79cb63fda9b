package simulate

import (
	"context"
	"fmt"

	"github.com/okian/wordlebot/internal/domain/leaderboard"
	"github.com/okian/wordlebot/internal/domain/types"
	"github.com/okian/wordlebot/pkg/logger"
)

// Verify compares a served leaderboard with the expected ranking and returns
// how many entries were compared. Entries for users the run did not create
// are skipped; ranks and medals are only checked when there are none.
func Verify(expected leaderboard.Board, served []types.Entry) (int, error) {
	known := make(map[string]struct{}, len(expected.Entries))
	for _, e := range expected.Entries {
		known[e.UserID] = struct{}{}
	}
	ours := make([]types.Entry, 0, len(served))
	for _, e := range served {
		if _, ok := known[e.UserID]; ok {
			ours = append(ours, e)
		}
	}
	foreign := len(ours) != len(served)

	if len(ours) == 0 && !expected.Empty() {
		return 0, fmt.Errorf("%w: none of the %d expected users were served", ErrMismatch, len(expected.Entries))
	}
	want := expected.Top(len(ours)).Entries
	if len(want) != len(ours) {
		return 0, fmt.Errorf("%w: served %d entries, expected at most %d", ErrMismatch, len(ours), len(want))
	}

	for i, got := range ours {
		w := want[i]
		switch {
		case got.UserID != w.UserID:
			return i, fmt.Errorf("%w: position %d is %s, expected %s", ErrMismatch, i+1, got.UserID, w.UserID)
		case got.Mean != w.Mean.String():
			return i, fmt.Errorf("%w: %s mean %s, expected %s", ErrMismatch, w.UserID, got.Mean, w.Mean.String())
		case got.Games != w.Games():
			return i, fmt.Errorf("%w: %s games %d, expected %d", ErrMismatch, w.UserID, got.Games, w.Games())
		case got.DisplayName != w.DisplayName:
			return i, fmt.Errorf("%w: %s name %q, expected %q", ErrMismatch, w.UserID, got.DisplayName, w.DisplayName)
		case !foreign && got.Rank != w.Rank:
			return i, fmt.Errorf("%w: %s rank %d, expected %d", ErrMismatch, w.UserID, got.Rank, w.Rank)
		case !foreign && got.Medal != w.Medal:
			return i, fmt.Errorf("%w: %s medal %q, expected %q", ErrMismatch, w.UserID, got.Medal, w.Medal)
		}
	}
	return len(ours), nil
}

// displayTop logs the first entries of the served board.
func displayTop(ctx context.Context, served []types.Entry, n int) {
	n = min(n, len(served))
	for _, e := range served[:n] {
		logger.Get().Info(ctx, "served entry",
			logger.Int("rank", e.Rank),
			logger.String("user", e.DisplayName),
			logger.String("mean", e.Mean),
			logger.Int("games", e.Games))
	}
}
