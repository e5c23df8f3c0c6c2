package usecase

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLayoutForDate(t *testing.T) {
	changeover := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	Convey("Dates before the changeover use the original layout", t, func() {
		layout := LayoutForDate(changeover.AddDate(0, 0, -1), changeover)
		So(layout.Version, ShouldEqual, 1)
		So(layout.Flying.Event, ShouldEqual, 1)
		So(layout.Flying.BriefStart, ShouldEqual, 2)
	})

	Convey("The changeover date itself uses the current layout", t, func() {
		layout := LayoutForDate(changeover, changeover)
		So(layout.Version, ShouldEqual, 2)
		So(layout.Flying.BriefStart, ShouldEqual, 1)
		So(layout.Flying.Event, ShouldEqual, 5)
	})

	Convey("A zero changeover means the current layout everywhere", t, func() {
		ancient := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
		So(LayoutForDate(ancient, time.Time{}).Version, ShouldEqual, 2)
	})
}

func TestResolveAsOf(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC) }

	Convey("An explicit override wins over everything", t, func() {
		asOf, simulated, err := ResolveAsOf("2024-12-15", "2024-01-01", clock)
		So(err, ShouldBeNil)
		So(simulated, ShouldBeTrue)
		So(asOf.Format("2006-01-02"), ShouldEqual, "2024-12-15")
	})

	Convey("An unparsable override is rejected", t, func() {
		_, _, err := ResolveAsOf("12/15/2024", "", clock)
		So(err, ShouldEqual, ErrInvalidDate)
	})

	Convey("The simulation date applies when no override is given", t, func() {
		asOf, simulated, err := ResolveAsOf("", "2024-01-01", clock)
		So(err, ShouldBeNil)
		So(simulated, ShouldBeTrue)
		So(asOf.Format("2006-01-02"), ShouldEqual, "2024-01-01")
	})

	Convey("An unparsable simulation date falls through to the clock", t, func() {
		asOf, simulated, err := ResolveAsOf("", "not-a-date", clock)
		So(err, ShouldBeNil)
		So(simulated, ShouldBeFalse)
		So(asOf.Equal(clock()), ShouldBeTrue)
	})

	Convey("With neither, the real clock is used", t, func() {
		asOf, simulated, err := ResolveAsOf("", "", clock)
		So(err, ShouldBeNil)
		So(simulated, ShouldBeFalse)
		So(asOf.Equal(clock()), ShouldBeTrue)
	})
}
