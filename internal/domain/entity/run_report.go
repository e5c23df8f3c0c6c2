package entity

import "time"

// Run status
const (
	RunCompleted           = "COMPLETED"
	RunCompletedWithErrors = "COMPLETED_WITH_ERRORS"
)

// Soft error kinds recorded during a run. None of these abort the run;
// only roster resolution failure is fatal and that never produces a report.
const (
	ErrKindSheetNotFound  = "SHEET_NOT_FOUND"
	ErrKindSheetRead      = "SHEET_READ"
	ErrKindMalformedRow   = "MALFORMED_ROW"
	ErrKindCacheWrite     = "CACHE_WRITE"
	ErrKindRosterConflict = "ROSTER_CONFLICT"
)

// RunError is one soft error encountered during a batch run.
type RunError struct {
	Kind   string `bson:"kind" json:"kind"`
	Sheet  string `bson:"sheet,omitempty" json:"sheet,omitempty"`
	Person string `bson:"person,omitempty" json:"person,omitempty"`
	Detail string `bson:"detail" json:"detail"`
}

// RunReport records one tier batch run: what was processed, how long it
// took, how much was written and every soft error along the way.
type RunReport struct {
	ID              string        `bson:"_id,omitempty" json:"-"`
	RunID           string        `bson:"runId" json:"runId"`
	Tier            string        `bson:"tier" json:"tier"`
	AsOfDate        string        `bson:"asOfDate" json:"asOfDate"`
	StartedAt       time.Time     `bson:"startedAt" json:"startedAt"`
	Duration        time.Duration `bson:"durationNs" json:"duration"`
	SheetsProcessed int           `bson:"sheetsProcessed" json:"sheetsProcessed"`
	PeopleProcessed int           `bson:"peopleProcessed" json:"peopleProcessed"`
	EventsFound     int           `bson:"eventsFound" json:"eventsFound"`
	CacheBytes      int           `bson:"cacheBytes" json:"cacheBytes"`
	Status          string        `bson:"status" json:"status"`
	Errors          []RunError    `bson:"errors" json:"errors"`
	CreatedAt       time.Time     `bson:"createdAt" json:"-"`
}

// CacheSizeMB reports the serialized payload size in megabytes.
func (r *RunReport) CacheSizeMB() float64 {
	return float64(r.CacheBytes) / (1024 * 1024)
}
