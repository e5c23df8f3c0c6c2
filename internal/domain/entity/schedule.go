package entity

import (
	"sort"
	"time"
)

// SchemaVersion tags every cached PersonSchedule. Bump it whenever the
// shape below changes so stale payloads age out under their own keys
// instead of being decoded into the wrong shape.
const SchemaVersion = "v3"

// PersonSchedule is one person's merged events for a set of days, as
// produced by a single batch run. It is superseded wholesale by the next
// run over the same days and expires from the cache after its TTL.
type PersonSchedule struct {
	Person   string     `json:"person"`
	Category string     `json:"category"`
	Type     PersonType `json:"type"`
	Events   []Event    `json:"events"`
	Days     []string   `json:"days"`
	CachedAt time.Time  `json:"cachedAt"`
	Version  string     `json:"version"`
}

// NewPersonSchedule builds an empty schedule for a roster person.
func NewPersonSchedule(p Person) *PersonSchedule {
	return &PersonSchedule{
		Person:   p.Name,
		Category: p.Category,
		Type:     p.Type,
		Events:   []Event{},
		Days:     []string{},
		Version:  SchemaVersion,
	}
}

// AddDay records a covered calendar day, keeping Days sorted and unique.
func (s *PersonSchedule) AddDay(isoDate string) {
	for _, d := range s.Days {
		if d == isoDate {
			return
		}
	}
	s.Days = append(s.Days, isoDate)
	sort.Strings(s.Days)
}

// Normalize sorts events chronologically (date, then time, no-time entries
// first in their day). Called once after a schedule is fully merged so
// cached payloads are deterministic for unchanged input.
func (s *PersonSchedule) Normalize() {
	sort.SliceStable(s.Events, func(i, j int) bool {
		return s.Events[i].SortKey() < s.Events[j].SortKey()
	})
}

// DaysWithEvents counts distinct event dates.
func (s *PersonSchedule) DaysWithEvents() int {
	seen := map[string]struct{}{}
	for _, e := range s.Events {
		seen[e.Date] = struct{}{}
	}
	return len(seen)
}
