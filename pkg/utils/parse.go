package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockRegex = regexp.MustCompile(`^([0-2]\d)([0-5]\d)$`)

// ParseClock parses a strict 4-digit zero-padded HHMM string into minutes
// since midnight. Malformed input yields nil rather than an error: the
// whiteboard carries plenty of "TBD", "N/A" and stray text in time columns
// and a bad time must not sink the row.
func ParseClock(s string) *int {
	s = strings.TrimSpace(s)
	m := clockRegex.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 {
		return nil
	}
	v := hour*60 + minute
	return &v
}

// SheetNameForDate renders the whiteboard tab name for a date using the
// configured Go time layout (e.g. "Mon 2 Jan" -> "Mon 15 Dec").
func SheetNameForDate(layout string, date time.Time) string {
	if layout == "" {
		layout = DEFAULT_SHEET_NAME_LAYOUT
	}
	return date.Format(layout)
}

// CellAt returns the trimmed cell at (row, col), or "" when the grid is
// shorter or the row is ragged.
func CellAt(grid RawGrid, row, col int) string {
	if row < 0 || row >= len(grid) {
		return ""
	}
	r := grid[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// SplitNames splits a person-bearing cell into candidate names. Cells hold
// either one name or several separated by "/" or ",".
func SplitNames(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return r == '/' || r == ','
	})
	var names []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			names = append(names, f)
		}
	}
	return names
}
