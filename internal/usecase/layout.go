package usecase

import "time"

// Column offsets are relative to the configured read range, zero-based.
// There are exactly two layout generations: the squadron re-cut the
// whiteboard columns once, and sheets keep the layout that was in force on
// their date. All parsing is parameterized by these structs; nothing
// branches on the layout version outside LayoutForDate.

// SupervisionColumns locates the duty-row fields.
type SupervisionColumns struct {
	Duty  int
	POC   int
	Start int
	End   int
}

// FlyingColumns locates the sortie-row fields. Crew occupies the inclusive
// column span CrewStart..CrewEnd.
type FlyingColumns struct {
	Model      int
	BriefStart int
	ETD        int
	ETA        int
	DebriefEnd int
	Event      int
	CrewStart  int
	CrewEnd    int
	Notes      int
	Status     int
}

// GroundColumns locates the ground-training fields.
type GroundColumns struct {
	Event         int
	Start         int
	End           int
	AttendeeStart int
	AttendeeEnd   int
}

// NAColumns locates the leave / not-available fields.
type NAColumns struct {
	Reason      int
	Start       int
	End         int
	PeopleStart int
	PeopleEnd   int
}

// ColumnLayout is one layout generation.
type ColumnLayout struct {
	Version     int
	Supervision SupervisionColumns
	Flying      FlyingColumns
	Ground      GroundColumns
	NA          NAColumns
}

// layoutV1 is the original board. The sortie event name sat between the
// model and the time block.
var layoutV1 = ColumnLayout{
	Version:     1,
	Supervision: SupervisionColumns{Duty: 0, POC: 1, Start: 2, End: 3},
	Flying: FlyingColumns{
		Model: 0, Event: 1,
		BriefStart: 2, ETD: 3, ETA: 4, DebriefEnd: 5,
		CrewStart: 6, CrewEnd: 10,
		Notes: 11, Status: 12,
	},
	Ground: GroundColumns{Event: 0, Start: 1, End: 2, AttendeeStart: 3, AttendeeEnd: 8},
	NA:     NAColumns{Reason: 0, Start: 1, End: 2, PeopleStart: 3, PeopleEnd: 8},
}

// layoutV2 is the current board: the event name moved behind the time
// block and a crew/attendee column was added to each band.
var layoutV2 = ColumnLayout{
	Version:     2,
	Supervision: SupervisionColumns{Duty: 0, POC: 1, Start: 2, End: 3},
	Flying: FlyingColumns{
		Model:      0,
		BriefStart: 1, ETD: 2, ETA: 3, DebriefEnd: 4,
		Event:     5,
		CrewStart: 6, CrewEnd: 11,
		Notes: 12, Status: 13,
	},
	Ground: GroundColumns{Event: 0, Start: 1, End: 2, AttendeeStart: 3, AttendeeEnd: 9},
	NA:     NAColumns{Reason: 0, Start: 1, End: 2, PeopleStart: 3, PeopleEnd: 9},
}

// LayoutForDate selects the column layout in force on a sheet date. Pure
// function: dates strictly before the changeover use the original layout,
// everything else the current one. A zero changeover means the board never
// changed and the current layout applies throughout.
func LayoutForDate(sheetDate, changeover time.Time) ColumnLayout {
	if !changeover.IsZero() && sheetDate.Before(changeover) {
		return layoutV1
	}
	return layoutV2
}
