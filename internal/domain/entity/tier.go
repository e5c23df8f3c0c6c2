package entity

import "time"

// Tier is a named contiguous day-offset range relative to the as-of date.
// Tiers partition the caching window and are processed independently, so a
// slow or failed run for one tier never invalidates another. The offsets
// are inclusive: recent = {0..2} covers today through today+2.
type Tier struct {
	Name        string
	StartOffset int
	EndOffset   int
	TTL         time.Duration
	CronSpec    string
}

// Days returns the number of calendar days the tier covers.
func (t Tier) Days() int {
	return t.EndOffset - t.StartOffset + 1
}
