package usecase

import (
	"time"

	"whiteboard-service/internal/domain/entity"
)

// RowBand is an inclusive zero-based row range of one whiteboard section.
type RowBand struct {
	Start int
	End   int
}

// BoardGeometry is where the four sections sit on a sheet and when the
// column layout changed.
type BoardGeometry struct {
	Bands      map[entity.Section]RowBand
	Changeover time.Time
}

// RosterRangeSpec is one configured roster block.
type RosterRangeSpec struct {
	Range    string
	Category string
	Type     entity.PersonType
}

// BoardSpec is the descriptor snapshot the use cases work from. A fresh
// snapshot is taken per run/request through BoardProvider so descriptor
// hot-reloads apply cleanly between runs, never mid-run.
type BoardSpec struct {
	SheetNameLayout string
	WindowDays      int
	SimulationDate  string
	Geometry        BoardGeometry
	Ranges          []RosterRangeSpec
	Denylist        []string
	Tiers           []entity.Tier
	Categories      []string
}

// BoardProvider yields the current descriptor snapshot.
type BoardProvider func() BoardSpec

// ResolveAsOf computes the effective "today" for a run or request. The
// precedence is fixed: explicit override, then the configured simulation
// date, then the real clock. The second return reports whether the result
// is simulated. An unparsable override yields ErrInvalidDate; an
// unparsable simulation date falls through to the clock.
func ResolveAsOf(override, simulationDate string, now func() time.Time) (time.Time, bool, error) {
	if override != "" {
		t, err := time.Parse("2006-01-02", override)
		if err != nil {
			return time.Time{}, false, ErrInvalidDate
		}
		return t, true, nil
	}
	if simulationDate != "" {
		if t, err := time.Parse("2006-01-02", simulationDate); err == nil {
			return t, true, nil
		}
	}
	return now(), false, nil
}
