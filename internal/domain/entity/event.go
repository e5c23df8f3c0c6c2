package entity

// Section tags the whiteboard row band an event came from.
type Section string

const (
	SectionSupervision Section = "supervision"
	SectionFlying      Section = "flying"
	SectionGround      Section = "ground"
	SectionNA          Section = "na"
)

// Event is one whiteboard entry attributed to a person. Exactly one of the
// variant pointers matching Section is set. Date always equals the date of
// the sheet the event was extracted from. Time is minutes since midnight;
// nil means the entry has no clock time (NA and auth rows sort first in
// their day).
type Event struct {
	Date        string  `json:"date"`
	Time        *int    `json:"time"`
	Section     Section `json:"section"`
	Description string  `json:"description,omitempty"`

	Flying      *FlyingDetails      `json:"flying,omitempty"`
	Ground      *GroundDetails      `json:"ground,omitempty"`
	NA          *NADetails          `json:"na,omitempty"`
	Supervision *SupervisionDetails `json:"supervision,omitempty"`
}

// FlyingDetails carries a sortie row. Times stay in the raw HHMM form the
// widget renders; the sortable minute value lives on Event.Time. The three
// status booleans are mutually exclusive, at most one is true.
type FlyingDetails struct {
	Model              string   `json:"model"`
	BriefStart         string   `json:"briefStart"`
	ETD                string   `json:"etd"`
	ETA                string   `json:"eta"`
	DebriefEnd         string   `json:"debriefEnd"`
	Event              string   `json:"event"`
	Crew               []string `json:"crew"`
	Notes              string   `json:"notes,omitempty"`
	Effective          bool     `json:"effective"`
	Cancelled          bool     `json:"cancelled"`
	PartiallyEffective bool     `json:"partiallyEffective"`
}

// GroundDetails carries a ground-training row.
type GroundDetails struct {
	Event     string   `json:"event"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Attendees []string `json:"attendees"`
}

// NADetails carries a leave / not-available row.
type NADetails struct {
	Reason string   `json:"reason"`
	Start  string   `json:"start"`
	End    string   `json:"end"`
	People []string `json:"people"`
}

// SupervisionDetails carries a duty row (SOF, RSU, ops sup). IsAuth marks
// authorization entries, which have no time window: Start and End are nil
// exactly when IsAuth is true.
type SupervisionDetails struct {
	Duty   string  `json:"duty"`
	POC    string  `json:"poc"`
	Start  *string `json:"start"`
	End    *string `json:"end"`
	IsAuth bool    `json:"isAuth"`
}

// StatusValid reports whether a flying event's tri-state status is
// consistent (at most one flag set). Non-flying events are always valid.
func (e Event) StatusValid() bool {
	if e.Flying == nil {
		return true
	}
	n := 0
	for _, b := range []bool{e.Flying.Effective, e.Flying.Cancelled, e.Flying.PartiallyEffective} {
		if b {
			n++
		}
	}
	return n <= 1
}

// SortKey orders events chronologically by date then time. Entries without
// a clock time come first within their day.
func (e Event) SortKey() string {
	t := -1
	if e.Time != nil {
		t = *e.Time
	}
	// date is ISO so lexical order is chronological; time packed to a
	// fixed width so 0900 sorts after 0730.
	return e.Date + "|" + pad4(t+1)
}

func pad4(v int) string {
	const digits = "0123456789"
	b := []byte{'0', '0', '0', '0'}
	for i := 3; i >= 0 && v > 0; i-- {
		b[i] = digits[v%10]
		v /= 10
	}
	return string(b)
}
