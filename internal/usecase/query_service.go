package usecase

import (
	"context"
	"strings"
	"time"

	"whiteboard-service/internal/domain/entity"
	"whiteboard-service/internal/domain/repository"
	"whiteboard-service/pkg/logger"
	"whiteboard-service/pkg/metrics"
	"whiteboard-service/pkg/utils"
)

// BulkName is the request marker for a whole-roster query.
const BulkName = "_bulk"

// ScheduleResponse answers a single-person query.
type ScheduleResponse struct {
	SearchName     string         `json:"searchName"`
	Events         []entity.Event `json:"events"`
	TotalEvents    int            `json:"totalEvents"`
	DaysSearched   int            `json:"daysSearched"`
	DaysWithEvents int            `json:"daysWithEvents"`
	Version        string         `json:"version"`
	TestMode       bool           `json:"testMode"`
	SimulatedToday string         `json:"simulatedToday"`
	FromCache      bool           `json:"fromCache"`
}

// RunMetadata summarizes the latest batch run for bulk responses.
type RunMetadata struct {
	LastRun         time.Time `json:"lastRun"`
	Duration        float64   `json:"duration"`
	SheetsProcessed int       `json:"sheetsProcessed"`
	PeopleProcessed int       `json:"peopleProcessed"`
	EventsFound     int       `json:"eventsFound"`
	CacheSizeMB     float64   `json:"cacheSizeMB"`
	Errors          []string  `json:"errors"`
}

// BulkResponse answers a whole-roster query.
type BulkResponse struct {
	Schedules      map[string]*entity.PersonSchedule `json:"schedules"`
	TotalPeople    int                               `json:"totalPeople"`
	Categories     []string                          `json:"categories"`
	Metadata       *RunMetadata                      `json:"metadata,omitempty"`
	Version        string                            `json:"version"`
	TestMode       bool                              `json:"testMode"`
	SimulatedToday string                            `json:"simulatedToday"`
	FromCache      bool                              `json:"fromCache"`
}

// QueryService serves interactive lookups cache-first. On a miss it runs
// the synchronous equivalent of a tier pass scoped to the requested
// person(s) over the full window and populates the cache before answering,
// so cache contents only ever come from the background processor or this
// fallback — never a third writer.
type QueryService struct {
	cache     repository.ScheduleCache
	reports   repository.RunReportRepository
	resolver  *RosterResolver
	processor *BatchProcessor
	board     BoardProvider
	now       func() time.Time
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewQueryService creates a new query service. now is injected so tests
// and simulation windows can pin the clock.
func NewQueryService(
	cache repository.ScheduleCache,
	reports repository.RunReportRepository,
	resolver *RosterResolver,
	processor *BatchProcessor,
	board BoardProvider,
	now func() time.Time,
	m *metrics.Metrics,
	logger logger.Logger,
) *QueryService {
	if now == nil {
		now = time.Now
	}
	return &QueryService{
		cache:     cache,
		reports:   reports,
		resolver:  resolver,
		processor: processor,
		board:     board,
		now:       now,
		metrics:   m,
		logger:    logger,
	}
}

// QueryPerson looks up one person's schedule for a day window starting at
// the resolved as-of date. days <= 0 falls back to the configured window.
func (s *QueryService) QueryPerson(ctx context.Context, name string, days int, testDate string) (*ScheduleResponse, error) {
	board := s.board()
	asOf, testMode, err := ResolveAsOf(testDate, board.SimulationDate, s.now)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = board.WindowDays
	}

	resp := &ScheduleResponse{
		SearchName:     name,
		Events:         []entity.Event{},
		DaysSearched:   days,
		Version:        entity.SchemaVersion,
		TestMode:       testMode,
		SimulatedToday: asOf.Format(utils.ISO_DATE_LAYOUT),
	}

	if events, ok := s.readThroughTiers(ctx, board, name, days); ok {
		s.metrics.CacheHits.Inc()
		resp.Events = filterWindow(events, asOf, days)
		resp.FromCache = true
	} else {
		s.metrics.CacheMisses.Inc()
		schedule, err := s.computeLive(ctx, board, []string{name}, asOf)
		if err != nil {
			return nil, err
		}
		if found, ok := schedule[name]; ok {
			resp.Events = filterWindow(found.Events, asOf, days)
		}
	}

	resp.TotalEvents = len(resp.Events)
	resp.DaysWithEvents = distinctDates(resp.Events)
	return resp, nil
}

// QueryBulk looks up the whole roster.
func (s *QueryService) QueryBulk(ctx context.Context, days int, testDate string) (*BulkResponse, error) {
	board := s.board()
	asOf, testMode, err := ResolveAsOf(testDate, board.SimulationDate, s.now)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = board.WindowDays
	}

	resp := &BulkResponse{
		Categories:     board.Categories,
		Version:        entity.SchemaVersion,
		TestMode:       testMode,
		SimulatedToday: asOf.Format(utils.ISO_DATE_LAYOUT),
	}

	merged, allHit := s.readBulkTiers(ctx, board, days)
	if allHit {
		s.metrics.CacheHits.Inc()
		resp.FromCache = true
	} else {
		s.metrics.CacheMisses.Inc()
		merged, err = s.computeLive(ctx, board, nil, asOf)
		if err != nil {
			return nil, err
		}
	}

	for _, schedule := range merged {
		schedule.Events = filterWindow(schedule.Events, asOf, days)
	}
	resp.Schedules = merged
	resp.TotalPeople = len(merged)

	if s.reports != nil {
		if last, err := s.reports.Latest(ctx, ""); err == nil {
			resp.Metadata = metadataFrom(last)
		}
	}
	return resp, nil
}

// readThroughTiers merges the cached per-tier entries covering the window.
// It is a hit only when every intersecting tier is present; a partial set
// would silently drop days.
//
// Cache keys carry no as-of date, so a request whose testDate falls outside
// the days the background runs covered still hits and the window filter
// then yields few or no events. Last-writer-wins per key; entries age out
// under the tier TTL and the next run re-centers them on its own as-of
// date.
func (s *QueryService) readThroughTiers(ctx context.Context, board BoardSpec, name string, days int) ([]entity.Event, bool) {
	var events []entity.Event
	hit := false
	for _, tier := range board.Tiers {
		if tier.StartOffset >= days {
			continue
		}
		schedule, found, err := s.cache.Get(ctx, tier.Name, name)
		if err != nil {
			s.logger.Warn("Cache read failed", "tier", tier.Name, "person", name, "error", err)
			return nil, false
		}
		if !found {
			return nil, false
		}
		hit = true
		events = append(events, schedule.Events...)
	}
	if !hit {
		return nil, false
	}
	merged := entity.PersonSchedule{Events: events}
	merged.Normalize()
	return merged.Events, true
}

// readBulkTiers merges the cached bulk entries covering the window.
func (s *QueryService) readBulkTiers(ctx context.Context, board BoardSpec, days int) (map[string]*entity.PersonSchedule, bool) {
	merged := map[string]*entity.PersonSchedule{}
	hit := false
	for _, tier := range board.Tiers {
		if tier.StartOffset >= days {
			continue
		}
		schedules, found, err := s.cache.GetBulk(ctx, tier.Name)
		if err != nil || !found {
			return nil, false
		}
		hit = true
		for name, schedule := range schedules {
			existing, ok := merged[name]
			if !ok {
				copied := *schedule
				merged[name] = &copied
				continue
			}
			existing.Events = append(existing.Events, schedule.Events...)
			for _, d := range schedule.Days {
				existing.AddDay(d)
			}
		}
	}
	if !hit {
		return nil, false
	}
	for _, schedule := range merged {
		schedule.Normalize()
	}
	return merged, hit
}

// computeLive runs the fallback computation over the full caching window
// and writes complete per-tier entries before returning, exactly as a
// background pass would. names == nil means the whole roster.
func (s *QueryService) computeLive(ctx context.Context, board BoardSpec, names []string, asOf time.Time) (map[string]*entity.PersonSchedule, error) {
	s.metrics.LiveComputes.Inc()

	roster, _, err := s.resolver.Resolve(ctx, board.Ranges, board.Denylist)
	if err != nil {
		return nil, err
	}
	people := selectPeople(roster, names)

	merged := map[string]*entity.PersonSchedule{}
	now := s.now()
	bulk := names == nil

	for _, tier := range board.Tiers {
		result := s.processor.ComputeWindow(ctx, board, people, asOf, tier.StartOffset, tier.EndOffset)
		for name, schedule := range result.Schedules {
			schedule.CachedAt = now
			if _, err := s.cache.Put(ctx, tier.Name, name, schedule, tier.TTL); err != nil {
				s.logger.Warn("Live fallback cache write failed", "tier", tier.Name, "person", name, "error", err)
			}

			existing, ok := merged[name]
			if !ok {
				copied := *schedule
				merged[name] = &copied
				continue
			}
			existing.Events = append(existing.Events, schedule.Events...)
			for _, d := range schedule.Days {
				existing.AddDay(d)
			}
		}
		if bulk {
			if _, err := s.cache.PutBulk(ctx, tier.Name, result.Schedules, tier.TTL); err != nil {
				s.logger.Warn("Live fallback bulk write failed", "tier", tier.Name, "error", err)
			}
		}
	}

	for _, schedule := range merged {
		schedule.Normalize()
	}
	return merged, nil
}

// selectPeople narrows the roster to the requested names. A name not on
// the roster is still searched: widget users type free-form names and the
// sheets are the source of truth, so an ad-hoc person with no category is
// used for attribution.
func selectPeople(roster []entity.Person, names []string) []entity.Person {
	if names == nil {
		return roster
	}
	byName := map[string]entity.Person{}
	for _, p := range roster {
		byName[strings.ToLower(p.Name)] = p
	}
	var out []entity.Person
	for _, name := range names {
		if p, ok := byName[strings.ToLower(name)]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, entity.Person{Name: name})
	}
	return out
}

func filterWindow(events []entity.Event, asOf time.Time, days int) []entity.Event {
	from := asOf.Format(utils.ISO_DATE_LAYOUT)
	to := asOf.AddDate(0, 0, days).Format(utils.ISO_DATE_LAYOUT)
	out := []entity.Event{}
	for _, e := range events {
		if e.Date >= from && e.Date < to {
			out = append(out, e)
		}
	}
	return out
}

func distinctDates(events []entity.Event) int {
	seen := map[string]struct{}{}
	for _, e := range events {
		seen[e.Date] = struct{}{}
	}
	return len(seen)
}

func metadataFrom(report *entity.RunReport) *RunMetadata {
	errs := make([]string, 0, len(report.Errors))
	for _, e := range report.Errors {
		errs = append(errs, e.Kind+": "+e.Detail)
	}
	return &RunMetadata{
		LastRun:         report.StartedAt,
		Duration:        report.Duration.Seconds(),
		SheetsProcessed: report.SheetsProcessed,
		PeopleProcessed: report.PeopleProcessed,
		EventsFound:     report.EventsFound,
		CacheSizeMB:     report.CacheSizeMB(),
		Errors:          errs,
	}
}
