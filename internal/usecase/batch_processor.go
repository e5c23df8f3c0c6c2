package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"whiteboard-service/internal/domain/entity"
	"whiteboard-service/internal/domain/repository"
	"whiteboard-service/pkg/logger"
	"whiteboard-service/pkg/metrics"
	"whiteboard-service/pkg/utils"

	"github.com/google/uuid"
)

// BatchProcessor runs one full caching pass per tier: walk the tier's day
// offsets, read and parse each day's sheet, merge per-person events into
// PersonSchedules and write them all into the cache under the tier's TTL.
//
// Failure policy: missing sheets, malformed rows and per-person cache
// write failures are soft — recorded in the run report, never aborting the
// run. Only roster resolution failure is fatal; there is no partial-roster
// run. The run therefore ends in COMPLETED or COMPLETED_WITH_ERRORS, never
// a failed state below the roster step.
type BatchProcessor struct {
	sheetSource repository.SheetSource
	cache       repository.ScheduleCache
	reports     repository.RunReportRepository
	resolver    *RosterResolver
	extractor   *EventExtractor
	board       BoardProvider
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewBatchProcessor creates a new batch processor. reports may be nil when
// no run history backend is configured.
func NewBatchProcessor(
	sheetSource repository.SheetSource,
	cache repository.ScheduleCache,
	reports repository.RunReportRepository,
	resolver *RosterResolver,
	extractor *EventExtractor,
	board BoardProvider,
	m *metrics.Metrics,
	logger logger.Logger,
) *BatchProcessor {
	return &BatchProcessor{
		sheetSource: sheetSource,
		cache:       cache,
		reports:     reports,
		resolver:    resolver,
		extractor:   extractor,
		board:       board,
		metrics:     m,
		logger:      logger,
	}
}

// WindowResult is the merged outcome of walking a span of day offsets.
type WindowResult struct {
	Schedules       map[string]*entity.PersonSchedule // keyed by person name
	SheetsProcessed int
	EventsFound     int
	SoftErrors      []entity.RunError
}

// ComputeWindow reads the sheets for asOf+startOffset .. asOf+endOffset
// and merges events for the given people. Shared by tier runs and the
// query service's live fallback so cache contents come from one code path.
func (p *BatchProcessor) ComputeWindow(ctx context.Context, board BoardSpec, people []entity.Person, asOf time.Time, startOffset, endOffset int) WindowResult {
	result := WindowResult{
		Schedules: make(map[string]*entity.PersonSchedule, len(people)),
	}
	for _, person := range people {
		result.Schedules[person.Name] = entity.NewPersonSchedule(person)
	}

	for offset := startOffset; offset <= endOffset; offset++ {
		date := asOf.AddDate(0, 0, offset)
		sheetName := utils.SheetNameForDate(board.SheetNameLayout, date)

		grid, err := p.sheetSource.Grid(ctx, sheetName)
		if errors.Is(err, repository.ErrSheetNotFound) {
			// Expected for weekends, holidays and days not yet built.
			p.logger.Info("Sheet missing, skipping day", "sheet", sheetName)
			result.SoftErrors = append(result.SoftErrors, entity.RunError{
				Kind:   entity.ErrKindSheetNotFound,
				Sheet:  sheetName,
				Detail: "no sheet for this day",
			})
			continue
		}
		if err != nil {
			p.logger.Error("Sheet read failed, skipping day", "sheet", sheetName, "error", err)
			p.metrics.ErrorsCount.WithLabelValues("sheet_read").Inc()
			result.SoftErrors = append(result.SoftErrors, entity.RunError{
				Kind:   entity.ErrKindSheetRead,
				Sheet:  sheetName,
				Detail: err.Error(),
			})
			continue
		}

		perPerson, softs := p.extractor.Extract(ctx, grid, date, people, board.Geometry)
		result.SoftErrors = append(result.SoftErrors, softs...)
		result.SheetsProcessed++
		p.metrics.SheetsProcessed.Inc()

		isoDate := date.Format(utils.ISO_DATE_LAYOUT)
		for _, schedule := range result.Schedules {
			schedule.AddDay(isoDate)
		}
		for name, events := range perPerson {
			schedule, ok := result.Schedules[name]
			if !ok {
				continue
			}
			schedule.Events = append(schedule.Events, events...)
			result.EventsFound += len(events)
			p.metrics.EventsExtracted.Add(float64(len(events)))
		}
	}

	for _, schedule := range result.Schedules {
		schedule.Normalize()
	}
	return result
}

// RunTier performs one full caching pass for the tier. The returned error
// is non-nil only for roster resolution failure.
func (p *BatchProcessor) RunTier(ctx context.Context, tier entity.Tier, asOf time.Time) (*entity.RunReport, error) {
	board := p.board()
	started := time.Now()

	p.logger.Info("Starting tier run",
		"tier", tier.Name,
		"asOf", asOf.Format(utils.ISO_DATE_LAYOUT),
		"days", tier.Days())

	people, conflicts, err := p.resolver.Resolve(ctx, board.Ranges, board.Denylist)
	if err != nil {
		p.metrics.ErrorsCount.WithLabelValues("roster_resolution").Inc()
		return nil, fmt.Errorf("roster resolution: %w", err)
	}

	report := &entity.RunReport{
		RunID:     uuid.NewString(),
		Tier:      tier.Name,
		AsOfDate:  asOf.Format(utils.ISO_DATE_LAYOUT),
		StartedAt: started,
		Errors:    conflicts,
	}

	result := p.ComputeWindow(ctx, board, people, asOf, tier.StartOffset, tier.EndOffset)
	report.SheetsProcessed = result.SheetsProcessed
	report.EventsFound = result.EventsFound
	report.Errors = append(report.Errors, result.SoftErrors...)

	now := time.Now()
	for _, name := range sortedNames(result.Schedules) {
		schedule := result.Schedules[name]
		schedule.CachedAt = now

		size, err := p.cache.Put(ctx, tier.Name, name, schedule, tier.TTL)
		if err != nil {
			// One person's write failure must not sink the rest.
			p.logger.Error("Cache write failed", "tier", tier.Name, "person", name, "error", err)
			p.metrics.ErrorsCount.WithLabelValues("cache_write").Inc()
			report.Errors = append(report.Errors, entity.RunError{
				Kind:   entity.ErrKindCacheWrite,
				Person: name,
				Detail: err.Error(),
			})
			continue
		}
		report.CacheBytes += size
		report.PeopleProcessed++
	}

	if size, err := p.cache.PutBulk(ctx, tier.Name, result.Schedules, tier.TTL); err != nil {
		p.logger.Error("Bulk cache write failed", "tier", tier.Name, "error", err)
		p.metrics.ErrorsCount.WithLabelValues("cache_write").Inc()
		report.Errors = append(report.Errors, entity.RunError{
			Kind:   entity.ErrKindCacheWrite,
			Detail: fmt.Sprintf("bulk: %v", err),
		})
	} else {
		report.CacheBytes += size
	}

	report.Duration = time.Since(started)
	report.Status = entity.RunCompleted
	if len(report.Errors) > 0 {
		report.Status = entity.RunCompletedWithErrors
	}

	p.metrics.RunsCompleted.WithLabelValues(tier.Name, report.Status).Inc()
	p.metrics.RunDuration.Observe(report.Duration.Seconds())

	if p.reports != nil {
		if err := p.reports.Save(ctx, report); err != nil {
			p.logger.Error("Failed to save run report", "tier", tier.Name, "error", err)
		}
	}

	p.logger.Info("Tier run finished",
		"tier", tier.Name,
		"status", report.Status,
		"sheets", report.SheetsProcessed,
		"people", report.PeopleProcessed,
		"events", report.EventsFound,
		"cacheBytes", report.CacheBytes,
		"errors", len(report.Errors),
		"elapsed", report.Duration)

	return report, nil
}

// RunAllTiers runs every configured tier in sequence; used for the warm
// run at startup. Per-tier failures do not stop the remaining tiers.
func (p *BatchProcessor) RunAllTiers(ctx context.Context, asOf time.Time) {
	for _, tier := range p.board().Tiers {
		if _, err := p.RunTier(ctx, tier, asOf); err != nil {
			p.logger.Error("Tier run failed", "tier", tier.Name, "error", err)
		}
	}
}

func sortedNames(schedules map[string]*entity.PersonSchedule) []string {
	names := make([]string, 0, len(schedules))
	for name := range schedules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
