package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/ratefit/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntryJSON(t *testing.T) {
	Convey("Given a leaderboard entry", t, func() {
		entry := types.Entry{Rank: 2, Contestant: "tourist", Rating: 3800, Competitions: 40}

		Convey("When encoding it", func() {
			raw, err := json.Marshal(entry)
			So(err, ShouldBeNil)

			Convey("Then the API field names are used", func() {
				So(string(raw), ShouldEqual, `{"rank":2,"contestant":"tourist","rating":3800,"competitions":40}`)
			})
		})
	})
}

func TestStatsJSON(t *testing.T) {
	Convey("Given stats without a run", t, func() {
		raw, err := json.Marshal(types.Stats{Contests: 3})
		So(err, ShouldBeNil)

		Convey("Then run fields are omitted", func() {
			So(string(raw), ShouldNotContainSubstring, "run_id")
			So(string(raw), ShouldContainSubstring, `"contests":3`)
		})
	})
}
