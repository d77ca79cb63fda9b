package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/wordlebot/internal/adapters/export"
	"github.com/okian/wordlebot/internal/domain/leaderboard"
	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWrite(t *testing.T) {
	Convey("Given two users' records", t, func() {
		base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
		recs := []model.ScoreRecord{
			{ID: 2, UserID: "u2", DisplayName: "bob", PuzzleNumber: 11, Score: scoring.FailedScore, RecordedAt: base.Add(time.Hour)},
			{ID: 1, UserID: "u1", DisplayName: "alice", PuzzleNumber: 10, Score: 3, RecordedAt: base},
		}
		board := leaderboard.Rank(recs)

		Convey("When the workbook is written", func() {
			var buf bytes.Buffer
			err := export.Write(&buf, board, recs, scoring.FailedScore)
			So(err, ShouldBeNil)

			f, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			defer func() { _ = f.Close() }()

			Convey("Then the leaderboard sheet holds the ranked board", func() {
				rows, err := f.GetRows(export.LeaderboardSheet)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3)
				So(rows[0][0], ShouldEqual, "Rank")
				So(rows[1][3], ShouldEqual, "alice")
				So(rows[1][4], ShouldEqual, "3.00")
				So(rows[2][3], ShouldEqual, "bob")
			})

			Convey("Then the scores sheet lists records oldest first with X for failures", func() {
				rows, err := f.GetRows(export.ScoresSheet)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3)
				So(rows[1][3], ShouldEqual, "alice")
				So(rows[2][5], ShouldEqual, "X")
				So(rows[1][6], ShouldEqual, "2025-03-10 08:00:00")
			})
		})
	})
}
