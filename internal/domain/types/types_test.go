package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/wordlebot/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	Convey("Given an Entry struct", t, func() {
		Convey("When encoding a medalled entry", func() {
			entry := types.Entry{Rank: 1, Medal: "🥇", UserID: "u1", DisplayName: "alice", Average: 3.5, Mean: "3.50", Games: 2}
			raw, err := json.Marshal(entry)

			Convey("Then it should use snake_case keys", func() {
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual,
					`{"rank":1,"medal":"🥇","user_id":"u1","display_name":"alice","average":3.5,"mean":"3.50","games":2}`)
			})
		})

		Convey("When encoding an entry without a medal", func() {
			raw, err := json.Marshal(types.Entry{Rank: 4, UserID: "u4"})

			Convey("Then the medal key should be omitted", func() {
				So(err, ShouldBeNil)
				So(string(raw), ShouldNotContainSubstring, "medal")
			})
		})
	})
}

func TestLeaderboard(t *testing.T) {
	Convey("Given an all-time leaderboard", t, func() {
		raw, err := json.Marshal(types.Leaderboard{Scope: "all", Entries: []types.Entry{}})

		Convey("Then since should be omitted and entries should be an empty array", func() {
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `{"scope":"all","entries":[]}`)
		})
	})
}
