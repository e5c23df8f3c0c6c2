package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"whiteboard-service/pkg/logger"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
func (l nopLogger) With(...interface{}) logger.Logger {
	return l
}

func writeDescriptor(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whiteboard.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWhiteboard(t *testing.T) {
	Convey("Given a full descriptor", t, func() {
		path := writeDescriptor(t, `
spreadsheet_id: sheet-123
sheet_name_layout: "Mon 2 Jan"
layout_changeover: "2024-06-01"
window_days: 8
denylist:
  - flying events
roster_ranges:
  - range: "Roster!B2:B30"
    category: students
    type: student
  - range: "Roster!D2:D30"
    category: staff
    type: staff
tiers:
  - name: recent
    start_offset: 0
    end_offset: 2
    ttl_minutes: 15
    cron: "*/15 * * * *"
  - name: far
    start_offset: 3
    end_offset: 7
    ttl_minutes: 180
`)
		store, err := LoadWhiteboard(path, nopLogger{})

		Convey("It loads with defaults filled in", func() {
			So(err, ShouldBeNil)
			wb := store.Current()
			So(wb.SpreadsheetID, ShouldEqual, "sheet-123")
			So(wb.ReadRange, ShouldEqual, "A1:T80")
			So(wb.WindowDays, ShouldEqual, 8)
			So(wb.Bands, ShouldContainKey, "flying")
		})

		Convey("The changeover date parses", func() {
			wb := store.Current()
			So(wb.ChangeoverDate().Format("2006-01-02"), ShouldEqual, "2024-06-01")
		})

		Convey("Tiers convert to domain tiers with minute TTLs", func() {
			tiers := store.Current().TierList()
			So(tiers, ShouldHaveLength, 2)
			So(tiers[0].Name, ShouldEqual, "recent")
			So(tiers[0].TTL, ShouldEqual, 15*time.Minute)
			So(tiers[0].Days(), ShouldEqual, 3)
			So(tiers[1].CronSpec, ShouldEqual, "")
		})

		Convey("Categories come back in configuration order, deduplicated", func() {
			So(store.Current().Categories(), ShouldResemble, []string{"students", "staff"})
		})
	})

	Convey("Given a descriptor without a spreadsheet id", t, func() {
		path := writeDescriptor(t, `
tiers:
  - name: recent
    start_offset: 0
    end_offset: 2
`)
		_, err := LoadWhiteboard(path, nopLogger{})

		Convey("Loading fails", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a tier with inverted offsets", t, func() {
		path := writeDescriptor(t, `
spreadsheet_id: sheet-123
tiers:
  - name: broken
    start_offset: 5
    end_offset: 2
`)
		_, err := LoadWhiteboard(path, nopLogger{})

		Convey("Loading fails", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given no changeover is configured", t, func() {
		path := writeDescriptor(t, `
spreadsheet_id: sheet-123
tiers:
  - name: recent
    start_offset: 0
    end_offset: 2
`)
		store, err := LoadWhiteboard(path, nopLogger{})

		Convey("The changeover date is zero", func() {
			So(err, ShouldBeNil)
			So(store.Current().ChangeoverDate().IsZero(), ShouldBeTrue)
		})
	})
}
