package config

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"whiteboard-service/internal/domain/entity"
	"whiteboard-service/pkg/logger"
)

// RosterRange describes one configured roster block on the spreadsheet.
type RosterRange struct {
	Range    string `koanf:"range"`
	Category string `koanf:"category"`
	Type     string `koanf:"type"`
}

// TierConfig describes one caching tier of the day window.
type TierConfig struct {
	Name        string `koanf:"name"`
	StartOffset int    `koanf:"start_offset"`
	EndOffset   int    `koanf:"end_offset"`
	TTLMinutes  int    `koanf:"ttl_minutes"`
	Cron        string `koanf:"cron"`
}

// Band is an inclusive row range of one whiteboard section, zero-based.
type Band struct {
	Start int `koanf:"start"`
	End   int `koanf:"end"`
}

// Whiteboard is the hot-reloadable descriptor of the shared spreadsheet:
// where the roster lives, how tabs are named, which rows belong to which
// section, the layout changeover date and the tier definitions. Nothing in
// here may be hard-coded in components; it is injected at construction.
type Whiteboard struct {
	SpreadsheetID    string            `koanf:"spreadsheet_id"`
	ReadRange        string            `koanf:"read_range"`
	SheetNameLayout  string            `koanf:"sheet_name_layout"`
	LayoutChangeover string            `koanf:"layout_changeover"`
	SimulationDate   string            `koanf:"simulation_date"`
	WindowDays       int               `koanf:"window_days"`
	Denylist         []string          `koanf:"denylist"`
	RosterRanges     []RosterRange     `koanf:"roster_ranges"`
	Tiers            []TierConfig      `koanf:"tiers"`
	Bands            map[string]Band   `koanf:"bands"`
}

// ChangeoverDate parses the layout changeover date. A zero time means no
// changeover is configured and the current layout applies everywhere.
func (w *Whiteboard) ChangeoverDate() time.Time {
	t, err := time.Parse("2006-01-02", w.LayoutChangeover)
	if err != nil {
		return time.Time{}
	}
	return t
}

// TierList converts the configured tiers into domain tiers.
func (w *Whiteboard) TierList() []entity.Tier {
	tiers := make([]entity.Tier, 0, len(w.Tiers))
	for _, tc := range w.Tiers {
		tiers = append(tiers, entity.Tier{
			Name:        tc.Name,
			StartOffset: tc.StartOffset,
			EndOffset:   tc.EndOffset,
			TTL:         time.Duration(tc.TTLMinutes) * time.Minute,
			CronSpec:    tc.Cron,
		})
	}
	return tiers
}

// Categories returns the distinct roster categories in configuration order.
func (w *Whiteboard) Categories() []string {
	var out []string
	seen := map[string]struct{}{}
	for _, r := range w.RosterRanges {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}

func (w *Whiteboard) validate() error {
	if w.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet_id must not be empty")
	}
	if len(w.Tiers) == 0 {
		return fmt.Errorf("at least one tier must be configured")
	}
	for _, tc := range w.Tiers {
		if tc.EndOffset < tc.StartOffset {
			return fmt.Errorf("tier %q: end_offset before start_offset", tc.Name)
		}
	}
	return nil
}

func defaults() *Whiteboard {
	return &Whiteboard{
		ReadRange:       "A1:T80",
		SheetNameLayout: "Mon 2 Jan",
		WindowDays:      8,
		Bands: map[string]Band{
			"supervision": {Start: 2, End: 7},
			"flying":      {Start: 9, End: 44},
			"ground":      {Start: 46, End: 57},
			"na":          {Start: 59, End: 70},
		},
	}
}

// WhiteboardStore loads the descriptor and keeps serving the latest good
// snapshot. The file is watched; a broken edit keeps the previous snapshot
// in place instead of taking the service down.
type WhiteboardStore struct {
	path    string
	current atomic.Pointer[Whiteboard]
	logger  logger.Logger
}

// LoadWhiteboard reads the descriptor, layering defaults, the YAML file and
// WB_-prefixed env overrides, and starts watching the file for changes.
func LoadWhiteboard(path string, log logger.Logger) (*WhiteboardStore, error) {
	s := &WhiteboardStore{path: path, logger: log}

	wb, err := s.load()
	if err != nil {
		return nil, err
	}
	s.current.Store(wb)

	f := file.Provider(path)
	f.Watch(func(event interface{}, err error) {
		if err != nil {
			log.Error("Whiteboard config watch error", "error", err)
			return
		}
		fresh, err := s.load()
		if err != nil {
			log.Error("Whiteboard config reload failed, keeping previous", "error", err)
			return
		}
		s.current.Store(fresh)
		log.Info("Whiteboard config reloaded", "path", path)
	})

	return s, nil
}

// Current returns the active descriptor snapshot.
func (s *WhiteboardStore) Current() *Whiteboard {
	return s.current.Load()
}

func (s *WhiteboardStore) load() (*Whiteboard, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(s.path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load whiteboard config: %w", err)
	}

	// Env overrides: WB_SPREADSHEET_ID -> spreadsheet_id
	envProvider := env.Provider("WB_", ".", func(key string) string {
		return strings.ToLower(strings.TrimPrefix(key, "WB_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	wb := defaults()
	if err := k.UnmarshalWithConf("", wb, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal whiteboard config: %w", err)
	}
	if err := wb.validate(); err != nil {
		return nil, err
	}
	return wb, nil
}
