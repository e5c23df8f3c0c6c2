package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"whiteboard-service/internal/domain/entity"
	"whiteboard-service/internal/domain/repository"
	"whiteboard-service/pkg/logger"
	"whiteboard-service/pkg/metrics"
	"whiteboard-service/pkg/utils"
)

// Prometheus collectors register globally, so the package shares one set.
var testMetrics = metrics.NewMetrics("whiteboard_test")

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
func (l nopLogger) With(...interface{}) logger.Logger {
	return l
}

// fakeSheetSource serves grids from memory, keyed by sheet name and by
// A1 range. It counts Grid calls so tests can assert whether a query hit
// the live-compute path.
type fakeSheetSource struct {
	sheets    map[string]utils.RawGrid
	ranges    map[string]utils.RawGrid
	rangeErr  error
	gridCalls int
}

func (f *fakeSheetSource) Grid(_ context.Context, sheetName string) (utils.RawGrid, error) {
	f.gridCalls++
	grid, ok := f.sheets[sheetName]
	if !ok {
		return nil, repository.ErrSheetNotFound
	}
	return grid, nil
}

func (f *fakeSheetSource) ReadRange(_ context.Context, a1Range string) (utils.RawGrid, error) {
	if f.rangeErr != nil {
		return nil, f.rangeErr
	}
	grid, ok := f.ranges[a1Range]
	if !ok {
		return nil, repository.ErrSheetNotFound
	}
	return grid, nil
}

// fakeCache stores schedules in memory through a JSON round trip, so the
// stored copy is isolated from the caller exactly like a real backend.
type fakeCache struct {
	entries map[string]*entity.PersonSchedule
	bulk    map[string]map[string]*entity.PersonSchedule
	failPut map[string]error // person name -> error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: map[string]*entity.PersonSchedule{},
		bulk:    map[string]map[string]*entity.PersonSchedule{},
		failPut: map[string]error{},
	}
}

func (f *fakeCache) key(tier, person string) string { return tier + "|" + person }

func (f *fakeCache) Get(_ context.Context, tier, person string) (*entity.PersonSchedule, bool, error) {
	s, ok := f.entries[f.key(tier, person)]
	return s, ok, nil
}

func (f *fakeCache) Put(_ context.Context, tier, person string, schedule *entity.PersonSchedule, _ time.Duration) (int, error) {
	if err, ok := f.failPut[person]; ok {
		return 0, err
	}
	payload, err := json.Marshal(schedule)
	if err != nil {
		return 0, err
	}
	var copied entity.PersonSchedule
	if err := json.Unmarshal(payload, &copied); err != nil {
		return 0, err
	}
	f.entries[f.key(tier, person)] = &copied
	return len(payload), nil
}

func (f *fakeCache) GetBulk(_ context.Context, tier string) (map[string]*entity.PersonSchedule, bool, error) {
	m, ok := f.bulk[tier]
	return m, ok, nil
}

func (f *fakeCache) PutBulk(_ context.Context, tier string, schedules map[string]*entity.PersonSchedule, _ time.Duration) (int, error) {
	payload, err := json.Marshal(schedules)
	if err != nil {
		return 0, err
	}
	copied := map[string]*entity.PersonSchedule{}
	if err := json.Unmarshal(payload, &copied); err != nil {
		return 0, err
	}
	f.bulk[tier] = copied
	return len(payload), nil
}

// testGeometry lays out a small board: supervision rows 0-1, flying rows
// 2-4, ground rows 6-7, NA rows 9-10. Zero changeover, so the current
// column layout applies to every date.
func testGeometry() BoardGeometry {
	return BoardGeometry{
		Bands: map[entity.Section]RowBand{
			entity.SectionSupervision: {Start: 0, End: 1},
			entity.SectionFlying:      {Start: 2, End: 4},
			entity.SectionGround:      {Start: 6, End: 7},
			entity.SectionNA:          {Start: 9, End: 10},
		},
	}
}

// gridWith builds an 11-row grid and fills the given rows.
func gridWith(rows map[int][]string) utils.RawGrid {
	grid := make(utils.RawGrid, 11)
	for i := range grid {
		grid[i] = []string{}
	}
	for i, row := range rows {
		grid[i] = row
	}
	return grid
}

func testRoster(names ...string) []entity.Person {
	people := make([]entity.Person, 0, len(names))
	for _, n := range names {
		people = append(people, entity.Person{Name: n, Category: "students", Type: entity.TypeStudent})
	}
	return people
}

// testBoardSpec is an 8-day window split into three tiers, with one
// student roster range.
func testBoardSpec() BoardSpec {
	return BoardSpec{
		SheetNameLayout: "Mon 2 Jan",
		WindowDays:      8,
		Geometry:        testGeometry(),
		Ranges: []RosterRangeSpec{
			{Range: "Roster!B2:B10", Category: "students", Type: entity.TypeStudent},
		},
		Denylist: []string{"flying events"},
		Tiers: []entity.Tier{
			{Name: "recent", StartOffset: 0, EndOffset: 2, TTL: 15 * time.Minute},
			{Name: "mid", StartOffset: 3, EndOffset: 5, TTL: time.Hour},
			{Name: "far", StartOffset: 6, EndOffset: 7, TTL: 3 * time.Hour},
		},
		Categories: []string{"students"},
	}
}

var errNoReports = errors.New("no reports")

type fakeReports struct {
	saved []*entity.RunReport
}

func (f *fakeReports) Save(_ context.Context, report *entity.RunReport) error {
	f.saved = append(f.saved, report)
	return nil
}

func (f *fakeReports) Latest(_ context.Context, tier string) (*entity.RunReport, error) {
	for i := len(f.saved) - 1; i >= 0; i-- {
		if tier == "" || f.saved[i].Tier == tier {
			return f.saved[i], nil
		}
	}
	return nil, errNoReports
}

func (f *fakeReports) Recent(_ context.Context, limit int64) ([]entity.RunReport, error) {
	var out []entity.RunReport
	for i := len(f.saved) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, *f.saved[i])
	}
	return out, nil
}
