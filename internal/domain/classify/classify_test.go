package classify_test

import (
	"errors"
	"testing"

	"github.com/okian/ratefit/internal/domain/classify"
	"github.com/okian/ratefit/internal/domain/irt"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultClassifier(t *testing.T) {
	Convey("Given the default rules", t, func() {
		c := classify.Default()

		Convey("Then later beginner A and B problems are very easy", func() {
			So(c.Kind("abc042_a"), ShouldEqual, irt.VeryEasy)
			So(c.Kind("abc150_b"), ShouldEqual, irt.VeryEasy)
		})

		Convey("Then early beginner and later tasks are normal", func() {
			So(c.Kind("abc041_a"), ShouldEqual, irt.Normal)
			So(c.Kind("abc150_c"), ShouldEqual, irt.Normal)
			So(c.Kind("arc100_a"), ShouldEqual, irt.Normal)
		})

		Convey("Then the first grand problem gets the retreat model", func() {
			So(c.Kind("agc001_a"), ShouldEqual, irt.AgcEasiest)
			So(c.Kind("agc001_b"), ShouldEqual, irt.Normal)
		})

		Convey("Then marathon problems are prohibited", func() {
			So(c.Prohibited("arc047_d"), ShouldBeTrue)
			So(c.Prohibited("arc047_c"), ShouldBeFalse)
		})
	})
}

func TestCustomRules(t *testing.T) {
	Convey("Given custom rule sets", t, func() {
		c, err := classify.New([]string{`^xyz(\d+)_a$ >= 10`}, []string{}, []string{"bad_task"})
		So(err, ShouldBeNil)

		Convey("Then the minimum applies to the captured number", func() {
			So(c.Kind("xyz9_a"), ShouldEqual, irt.Normal)
			So(c.Kind("xyz10_a"), ShouldEqual, irt.VeryEasy)
		})

		Convey("Then an empty rule set is disabled", func() {
			So(c.Kind("agc001_a"), ShouldEqual, irt.Normal)
		})

		Convey("Then only the listed problems are prohibited", func() {
			So(c.Prohibited("bad_task"), ShouldBeTrue)
			So(c.Prohibited("arc047_d"), ShouldBeFalse)
		})
	})

	Convey("Malformed rules are refused", t, func() {
		for _, s := range []string{"", "(", `^abc >= 4`, `^abc(\d+) >= x`} {
			_, err := classify.ParseRule(s)
			So(errors.Is(err, classify.ErrInvalidRule), ShouldBeTrue)
		}
	})
}
