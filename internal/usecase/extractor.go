package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"whiteboard-service/internal/domain/entity"
	"whiteboard-service/internal/domain/repository"
	"whiteboard-service/pkg/logger"
	"whiteboard-service/pkg/utils"
)

// EventExtractor parses one sheet's raw grid into per-person events. It is
// deterministic: the same grid, date and roster always yield the same
// output, and it never reads the wall clock — the sheet date is resolved
// by the caller and stamped onto every event.
type EventExtractor struct {
	fleetRepo repository.FleetRepository
	logger    logger.Logger
}

// NewEventExtractor creates a new extractor. fleetRepo may be nil; model
// codes then pass through unnormalized.
func NewEventExtractor(fleetRepo repository.FleetRepository, logger logger.Logger) *EventExtractor {
	return &EventExtractor{
		fleetRepo: fleetRepo,
		logger:    logger,
	}
}

// Extract walks the four row bands with the layout in force on the sheet
// date and attributes every parsed event to each roster person appearing
// in that row's person-bearing columns. One row yields one Event shared by
// all its people. Rows with a blank primary field are skipped silently;
// rows with malformed time cells are kept with nil times and reported as
// soft errors.
func (x *EventExtractor) Extract(ctx context.Context, grid utils.RawGrid, date time.Time, roster []entity.Person, geometry BoardGeometry) (map[string][]entity.Event, []entity.RunError) {
	layout := LayoutForDate(date, geometry.Changeover)
	isoDate := date.Format(utils.ISO_DATE_LAYOUT)

	s := &sheetScan{
		grid:    grid,
		isoDate: isoDate,
		index:   rosterIndex(roster),
		events:  map[string][]entity.Event{},
	}

	if band, ok := geometry.Bands[entity.SectionSupervision]; ok {
		x.scanSupervision(s, band, layout.Supervision)
	}
	if band, ok := geometry.Bands[entity.SectionFlying]; ok {
		x.scanFlying(ctx, s, band, layout.Flying)
	}
	if band, ok := geometry.Bands[entity.SectionGround]; ok {
		x.scanGround(s, band, layout.Ground)
	}
	if band, ok := geometry.Bands[entity.SectionNA]; ok {
		x.scanNA(s, band, layout.NA)
	}

	return s.events, s.softErrors
}

// sheetScan accumulates one sheet's extraction state.
type sheetScan struct {
	grid       utils.RawGrid
	isoDate    string
	index      map[string]string // lowercase -> canonical roster name
	events     map[string][]entity.Event
	softErrors []entity.RunError
}

func rosterIndex(roster []entity.Person) map[string]string {
	idx := make(map[string]string, len(roster))
	for _, p := range roster {
		idx[strings.ToLower(p.Name)] = p.Name
	}
	return idx
}

// attribute assigns the event to every roster person named in the cells.
func (s *sheetScan) attribute(ev entity.Event, cells []string) {
	seen := map[string]struct{}{}
	for _, cell := range cells {
		for _, name := range utils.SplitNames(cell) {
			canonical, ok := s.index[strings.ToLower(name)]
			if !ok {
				continue
			}
			if _, dup := seen[canonical]; dup {
				continue
			}
			seen[canonical] = struct{}{}
			s.events[canonical] = append(s.events[canonical], ev)
		}
	}
}

// clock parses a time cell, recording a soft error when a non-empty cell
// is not valid HHMM. The row survives either way.
func (s *sheetScan) clock(cell, sheetRow string) *int {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	t := utils.ParseClock(cell)
	if t == nil {
		s.softErrors = append(s.softErrors, entity.RunError{
			Kind:   entity.ErrKindMalformedRow,
			Sheet:  s.isoDate,
			Detail: fmt.Sprintf("%s: unparsable time %q", sheetRow, cell),
		})
	}
	return t
}

func (s *sheetScan) span(row, from, to int) []string {
	var cells []string
	for c := from; c <= to; c++ {
		cells = append(cells, utils.CellAt(s.grid, row, c))
	}
	return cells
}

func (x *EventExtractor) scanSupervision(s *sheetScan, band RowBand, cols SupervisionColumns) {
	for row := band.Start; row <= band.End; row++ {
		duty := utils.CellAt(s.grid, row, cols.Duty)
		if duty == "" {
			continue
		}
		poc := utils.CellAt(s.grid, row, cols.POC)

		// Authorization entries carry no time window.
		isAuth := strings.Contains(strings.ToLower(duty), "auth")

		details := &entity.SupervisionDetails{
			Duty:   duty,
			POC:    poc,
			IsAuth: isAuth,
		}
		ev := entity.Event{
			Date:        s.isoDate,
			Section:     entity.SectionSupervision,
			Description: duty,
			Supervision: details,
		}
		if !isAuth {
			start := utils.CellAt(s.grid, row, cols.Start)
			end := utils.CellAt(s.grid, row, cols.End)
			if start != "" {
				details.Start = &start
			}
			if end != "" {
				details.End = &end
			}
			ev.Time = s.clock(start, fmt.Sprintf("supervision row %d", row))
		}
		s.attribute(ev, []string{poc})
	}
}

func (x *EventExtractor) scanFlying(ctx context.Context, s *sheetScan, band RowBand, cols FlyingColumns) {
	for row := band.Start; row <= band.End; row++ {
		model := utils.CellAt(s.grid, row, cols.Model)
		if model == "" {
			continue
		}

		crewCells := s.span(row, cols.CrewStart, cols.CrewEnd)
		var crew []string
		for _, cell := range crewCells {
			crew = append(crew, utils.SplitNames(cell)...)
		}

		briefStart := utils.CellAt(s.grid, row, cols.BriefStart)
		status := parseFlyingStatus(utils.CellAt(s.grid, row, cols.Status))

		details := &entity.FlyingDetails{
			Model:              x.normalizeModel(ctx, model),
			BriefStart:         briefStart,
			ETD:                utils.CellAt(s.grid, row, cols.ETD),
			ETA:                utils.CellAt(s.grid, row, cols.ETA),
			DebriefEnd:         utils.CellAt(s.grid, row, cols.DebriefEnd),
			Event:              utils.CellAt(s.grid, row, cols.Event),
			Crew:               crew,
			Notes:              utils.CellAt(s.grid, row, cols.Notes),
			Effective:          status == "effective",
			Cancelled:          status == "cancelled",
			PartiallyEffective: status == "partial",
		}
		ev := entity.Event{
			Date:        s.isoDate,
			Time:        s.clock(briefStart, fmt.Sprintf("flying row %d", row)),
			Section:     entity.SectionFlying,
			Description: details.Event,
			Flying:      details,
		}
		s.attribute(ev, crewCells)
	}
}

func (x *EventExtractor) scanGround(s *sheetScan, band RowBand, cols GroundColumns) {
	for row := band.Start; row <= band.End; row++ {
		name := utils.CellAt(s.grid, row, cols.Event)
		if name == "" {
			continue
		}

		attendeeCells := s.span(row, cols.AttendeeStart, cols.AttendeeEnd)
		var attendees []string
		for _, cell := range attendeeCells {
			attendees = append(attendees, utils.SplitNames(cell)...)
		}

		start := utils.CellAt(s.grid, row, cols.Start)
		details := &entity.GroundDetails{
			Event:     name,
			Start:     start,
			End:       utils.CellAt(s.grid, row, cols.End),
			Attendees: attendees,
		}
		ev := entity.Event{
			Date:        s.isoDate,
			Time:        s.clock(start, fmt.Sprintf("ground row %d", row)),
			Section:     entity.SectionGround,
			Description: name,
			Ground:      details,
		}
		s.attribute(ev, attendeeCells)
	}
}

func (x *EventExtractor) scanNA(s *sheetScan, band RowBand, cols NAColumns) {
	for row := band.Start; row <= band.End; row++ {
		reason := utils.CellAt(s.grid, row, cols.Reason)
		if reason == "" {
			continue
		}

		peopleCells := s.span(row, cols.PeopleStart, cols.PeopleEnd)
		var people []string
		for _, cell := range peopleCells {
			people = append(people, utils.SplitNames(cell)...)
		}

		details := &entity.NADetails{
			Reason: reason,
			Start:  utils.CellAt(s.grid, row, cols.Start),
			End:    utils.CellAt(s.grid, row, cols.End),
			People: people,
		}
		// NA entries sort first in their day: no clock time.
		ev := entity.Event{
			Date:        s.isoDate,
			Section:     entity.SectionNA,
			Description: reason,
			NA:          details,
		}
		s.attribute(ev, peopleCells)
	}
}

// parseFlyingStatus maps the status cell to the tri-state. Cancelled wins
// over partial when a cell carries both fragments.
func parseFlyingStatus(cell string) string {
	c := strings.ToLower(cell)
	switch {
	case strings.Contains(c, "cnx") || strings.Contains(c, "cancel"):
		return "cancelled"
	case strings.Contains(c, "peff") || strings.Contains(c, "partial"):
		return "partial"
	default:
		return "effective"
	}
}

// normalizeModel resolves the model cell through the fleet reference,
// keeping the raw text when there is no table or no match.
func (x *EventExtractor) normalizeModel(ctx context.Context, model string) string {
	if x.fleetRepo == nil {
		return model
	}
	aircraft, err := x.fleetRepo.GetByModelCode(ctx, model)
	if err != nil {
		return model
	}
	return aircraft.Designation
}
