package usecase

import (
	"context"
	"fmt"
	"strings"

	"whiteboard-service/internal/domain/entity"
	"whiteboard-service/internal/domain/repository"
	"whiteboard-service/pkg/logger"
)

// RosterResolver reads the configured roster ranges and produces the
// deduplicated list of people. A failure here is fatal to the run that
// asked: no partial roster is ever used.
type RosterResolver struct {
	sheetSource repository.SheetSource
	logger      logger.Logger
}

// NewRosterResolver creates a new roster resolver
func NewRosterResolver(sheetSource repository.SheetSource, logger logger.Logger) *RosterResolver {
	return &RosterResolver{
		sheetSource: sheetSource,
		logger:      logger,
	}
}

// Resolve reads every configured range and collects non-empty cells as
// people. Cells matching a denylist fragment are dropped: they are section
// labels that leaked into a roster range, not people. A name appearing in
// more than one range keeps its first-seen category but the collision is
// surfaced as a conflict for the caller to report — it is a configuration
// error, not something to resolve silently.
func (r *RosterResolver) Resolve(ctx context.Context, ranges []RosterRangeSpec, denylist []string) ([]entity.Person, []entity.RunError, error) {
	var (
		people    []entity.Person
		conflicts []entity.RunError
	)
	seen := map[string]entity.Person{}

	for _, spec := range ranges {
		grid, err := r.sheetSource.ReadRange(ctx, spec.Range)
		if err != nil {
			return nil, nil, fmt.Errorf("roster range %s: %w", spec.Range, err)
		}

		for _, row := range grid {
			for _, cell := range row {
				name := strings.TrimSpace(cell)
				if name == "" || r.denied(name, denylist) {
					continue
				}

				key := strings.ToLower(name)
				if prev, ok := seen[key]; ok {
					if prev.Category != spec.Category {
						conflicts = append(conflicts, entity.RunError{
							Kind:   entity.ErrKindRosterConflict,
							Person: name,
							Detail: fmt.Sprintf("listed in both %q and %q, keeping %q", prev.Category, spec.Category, prev.Category),
						})
					}
					continue
				}

				p := entity.Person{
					Name:     name,
					Category: spec.Category,
					Type:     spec.Type,
				}
				seen[key] = p
				people = append(people, p)
			}
		}
	}

	r.logger.Debug("Roster resolved", "people", len(people), "conflicts", len(conflicts))
	return people, conflicts, nil
}

// denied reports whether the cell matches a denylist fragment,
// case-insensitive substring.
func (r *RosterResolver) denied(name string, denylist []string) bool {
	lower := strings.ToLower(name)
	for _, fragment := range denylist {
		if fragment == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(fragment)) {
			return true
		}
	}
	return false
}
