package model_test

import (
	"testing"

	"github.com/okian/wordlebot/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOutcomeString(t *testing.T) {
	Convey("Given each outcome", t, func() {
		Convey("Then it should render its wire name", func() {
			So(model.OutcomeNoMatch.String(), ShouldEqual, "no_match")
			So(model.OutcomeInserted.String(), ShouldEqual, "inserted")
			So(model.OutcomeDuplicate.String(), ShouldEqual, "duplicate")
			So(model.OutcomeFailed.String(), ShouldEqual, "failed")
			So(model.Outcome(42).String(), ShouldEqual, "no_match")
		})
	})
}
