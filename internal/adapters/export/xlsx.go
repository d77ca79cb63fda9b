// Package export renders leaderboards and raw scores as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/okian/wordlebot/internal/domain/leaderboard"
	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/internal/domain/scoring"
)

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names.
const (
	LeaderboardSheet = "Leaderboard"
	ScoresSheet      = "Scores"
)

const dateLayout = "2006-01-02 15:04:05"

// Write builds a workbook with the ranked board and every raw record and
// writes it to w. failed is the stored failure sentinel, rendered as X.
func Write(w io.Writer, board leaderboard.Board, recs []model.ScoreRecord, failed int) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", LeaderboardSheet); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err := writeBoard(f, board); err != nil {
		return err
	}
	if _, err := f.NewSheet(ScoresSheet); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err := writeScores(f, recs, failed); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}

func writeBoard(f *excelize.File, board leaderboard.Board) error {
	sw, err := f.NewStreamWriter(LeaderboardSheet)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	header := []interface{}{"Rank", "Medal", "User ID", "Name", "Average", "Games"}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	for i, e := range board.Entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{e.Rank, e.Medal, e.UserID, e.DisplayName, e.Mean.String(), e.Games()}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("%w: %w", ErrExport, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}

func writeScores(f *excelize.File, recs []model.ScoreRecord, failed int) error {
	sorted := append([]model.ScoreRecord(nil), recs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].RecordedAt.Equal(sorted[j].RecordedAt) {
			return sorted[i].RecordedAt.Before(sorted[j].RecordedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	sw, err := f.NewStreamWriter(ScoresSheet)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	header := []interface{}{"ID", "Guild ID", "User ID", "Name", "Puzzle", "Score", "Recorded At (UTC)"}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	for i, r := range sorted {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.ID, r.GuildID, r.UserID, r.DisplayName, r.PuzzleNumber,
			scoring.Label(r.Score, failed), r.RecordedAt.UTC().Format(dateLayout),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("%w: %w", ErrExport, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}
