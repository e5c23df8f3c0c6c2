package usecase

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"whiteboard-service/internal/domain/entity"
	"whiteboard-service/pkg/utils"
)

func newTestQuery(source *fakeSheetSource, cache *fakeCache, reports *fakeReports, clock func() time.Time) *QueryService {
	board := testBoardSpec()
	provider := func() BoardSpec { return board }
	resolver := NewRosterResolver(source, nopLogger{})
	extractor := NewEventExtractor(nil, nopLogger{})
	processor := NewBatchProcessor(source, cache, reports, resolver, extractor, provider, testMetrics, nopLogger{})
	return NewQueryService(cache, reports, resolver, processor, provider, clock, testMetrics, nopLogger{})
}

func cachedSchedule(name string, dates ...string) *entity.PersonSchedule {
	s := entity.NewPersonSchedule(entity.Person{Name: name, Category: "students", Type: entity.TypeStudent})
	minutes := 7 * 60
	for _, d := range dates {
		s.Events = append(s.Events, entity.Event{
			Date:    d,
			Time:    &minutes,
			Section: entity.SectionFlying,
			Flying:  &entity.FlyingDetails{Model: "T-38", Effective: true},
		})
		s.AddDay(d)
	}
	s.CachedAt = time.Now()
	return s
}

func TestQueryPerson(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC) }
	roster := map[string]utils.RawGrid{"Roster!B2:B10": {{"Adams"}, {"Baker"}}}

	Convey("Given every intersecting tier is cached", t, func() {
		cache := newFakeCache()
		cache.Put(ctx, "recent", "Adams", cachedSchedule("Adams", "2024-12-15", "2024-12-16", "2024-12-17"), time.Minute)
		cache.Put(ctx, "mid", "Adams", cachedSchedule("Adams"), time.Minute)
		source := &fakeSheetSource{ranges: roster}
		q := newTestQuery(source, cache, &fakeReports{}, clock)

		resp, err := q.QueryPerson(ctx, "Adams", 4, "2024-12-15")

		Convey("The answer comes from the cache without touching a sheet", func() {
			So(err, ShouldBeNil)
			So(resp.FromCache, ShouldBeTrue)
			So(source.gridCalls, ShouldEqual, 0)
			So(resp.TotalEvents, ShouldEqual, 3)
			So(resp.DaysSearched, ShouldEqual, 4)
			So(resp.DaysWithEvents, ShouldEqual, 3)
			So(resp.TestMode, ShouldBeTrue)
			So(resp.SimulatedToday, ShouldEqual, "2024-12-15")
			So(resp.Version, ShouldEqual, entity.SchemaVersion)
		})
	})

	Convey("Given one intersecting tier is missing from the cache", t, func() {
		asOf := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)
		cache := newFakeCache()
		cache.Put(ctx, "recent", "Adams", cachedSchedule("Adams", "2024-12-15"), time.Minute)
		source := &fakeSheetSource{sheets: sheetsFor(asOf, 0, 1, 2), ranges: roster}
		q := newTestQuery(source, cache, &fakeReports{}, clock)

		resp, err := q.QueryPerson(ctx, "Adams", 4, "2024-12-15")

		Convey("The query computes live over the full window", func() {
			So(err, ShouldBeNil)
			So(resp.FromCache, ShouldBeFalse)
			So(source.gridCalls, ShouldBeGreaterThan, 0)
			So(resp.TotalEvents, ShouldEqual, 3)
			So(resp.DaysWithEvents, ShouldEqual, 3)
		})

		Convey("And repopulates every tier for the person", func() {
			for _, tier := range []string{"recent", "mid", "far"} {
				_, found, _ := cache.Get(ctx, tier, "Adams")
				So(found, ShouldBeTrue)
			}
		})
	})

	Convey("Given a simulated window where the last day's sheet does not exist", t, func() {
		asOf := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)
		source := &fakeSheetSource{sheets: sheetsFor(asOf, 0, 1, 2), ranges: roster}
		q := newTestQuery(source, newFakeCache(), &fakeReports{}, clock)

		resp, err := q.QueryPerson(ctx, "Adams", 4, "2024-12-15")

		Convey("The missing day is searched but contributes nothing", func() {
			So(err, ShouldBeNil)
			So(resp.DaysSearched, ShouldEqual, 4)
			So(resp.DaysWithEvents, ShouldEqual, 3)
			So(resp.TotalEvents, ShouldEqual, 3)
			So(resp.TestMode, ShouldBeTrue)
			So(resp.SimulatedToday, ShouldEqual, "2024-12-15")
		})
	})

	Convey("Given cached entries centered on a different as-of date", t, func() {
		cache := newFakeCache()
		cache.Put(ctx, "recent", "Adams", cachedSchedule("Adams", "2024-12-15", "2024-12-16"), time.Minute)
		cache.Put(ctx, "mid", "Adams", cachedSchedule("Adams"), time.Minute)
		source := &fakeSheetSource{ranges: roster}
		q := newTestQuery(source, cache, &fakeReports{}, clock)

		resp, err := q.QueryPerson(ctx, "Adams", 4, "2025-02-01")

		Convey("Keys carry no date, so it still hits and the window filter empties it", func() {
			So(err, ShouldBeNil)
			So(resp.FromCache, ShouldBeTrue)
			So(source.gridCalls, ShouldEqual, 0)
			So(resp.TotalEvents, ShouldEqual, 0)
			So(resp.Events, ShouldBeEmpty)
			So(resp.SimulatedToday, ShouldEqual, "2025-02-01")
		})
	})

	Convey("Given an unparsable testDate", t, func() {
		q := newTestQuery(&fakeSheetSource{ranges: roster}, newFakeCache(), &fakeReports{}, clock)

		_, err := q.QueryPerson(ctx, "Adams", 4, "Dec 15")

		Convey("The query is rejected before any work happens", func() {
			So(err, ShouldEqual, ErrInvalidDate)
		})
	})

	Convey("Given a name that is not on the roster", t, func() {
		asOf := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)
		source := &fakeSheetSource{sheets: sheetsFor(asOf, 0, 1, 2), ranges: roster}
		q := newTestQuery(source, newFakeCache(), &fakeReports{}, clock)

		resp, err := q.QueryPerson(ctx, "Zimmer", 4, "2024-12-15")

		Convey("The sheets are still searched and the answer is empty", func() {
			So(err, ShouldBeNil)
			So(resp.TotalEvents, ShouldEqual, 0)
			So(resp.Events, ShouldNotBeNil)
		})
	})

	Convey("Given days is omitted", t, func() {
		asOf := clock()
		source := &fakeSheetSource{sheets: sheetsFor(asOf, 0), ranges: roster}
		q := newTestQuery(source, newFakeCache(), &fakeReports{}, clock)

		resp, err := q.QueryPerson(ctx, "Adams", 0, "")

		Convey("The configured window applies and the clock is the as-of date", func() {
			So(err, ShouldBeNil)
			So(resp.DaysSearched, ShouldEqual, 8)
			So(resp.TestMode, ShouldBeFalse)
			So(resp.SimulatedToday, ShouldEqual, "2025-03-10")
		})
	})
}

func TestQueryBulk(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC) }
	roster := map[string]utils.RawGrid{"Roster!B2:B10": {{"Adams"}, {"Baker"}}}

	Convey("Given the bulk entries for every intersecting tier are cached", t, func() {
		cache := newFakeCache()
		cache.PutBulk(ctx, "recent", map[string]*entity.PersonSchedule{
			"Adams": cachedSchedule("Adams", "2024-12-15"),
			"Baker": cachedSchedule("Baker", "2024-12-16"),
		}, time.Minute)
		cache.PutBulk(ctx, "mid", map[string]*entity.PersonSchedule{
			"Adams": cachedSchedule("Adams"),
			"Baker": cachedSchedule("Baker"),
		}, time.Minute)
		source := &fakeSheetSource{ranges: roster}
		q := newTestQuery(source, cache, &fakeReports{}, clock)

		resp, err := q.QueryBulk(ctx, 4, "2024-12-15")

		Convey("The whole roster is served from the cache", func() {
			So(err, ShouldBeNil)
			So(resp.FromCache, ShouldBeTrue)
			So(source.gridCalls, ShouldEqual, 0)
			So(resp.TotalPeople, ShouldEqual, 2)
			So(resp.Schedules["Adams"].Events, ShouldHaveLength, 1)
			So(resp.Categories, ShouldResemble, []string{"students"})
		})
	})

	Convey("Given a cold cache", t, func() {
		asOf := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)
		cache := newFakeCache()
		source := &fakeSheetSource{sheets: sheetsFor(asOf, 0, 1, 2), ranges: roster}
		reports := &fakeReports{}
		reports.Save(ctx, &entity.RunReport{
			Tier: "recent", StartedAt: asOf,
			SheetsProcessed: 3, PeopleProcessed: 2, EventsFound: 6,
			Status: entity.RunCompleted,
		})
		q := newTestQuery(source, cache, reports, clock)

		resp, err := q.QueryBulk(ctx, 4, "2024-12-15")

		Convey("The roster is computed live and the bulk entries are written back", func() {
			So(err, ShouldBeNil)
			So(resp.FromCache, ShouldBeFalse)
			So(resp.TotalPeople, ShouldEqual, 2)
			So(resp.Schedules["Adams"].Events, ShouldHaveLength, 3)

			for _, tier := range []string{"recent", "mid", "far"} {
				_, found, _ := cache.GetBulk(ctx, tier)
				So(found, ShouldBeTrue)
			}
		})

		Convey("The latest run report is attached as metadata", func() {
			So(resp.Metadata, ShouldNotBeNil)
			So(resp.Metadata.SheetsProcessed, ShouldEqual, 3)
			So(resp.Metadata.EventsFound, ShouldEqual, 6)
		})
	})
}
