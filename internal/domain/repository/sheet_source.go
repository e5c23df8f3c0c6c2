package repository

import (
	"context"
	"errors"

	"whiteboard-service/pkg/utils"
)

// ErrSheetNotFound is returned when no tab with the requested name exists.
// Missing tabs are expected (weekends, holidays, future days not yet built)
// and callers skip the day rather than failing the run.
var ErrSheetNotFound = errors.New("sheet not found")

// SheetSource reads raw cell blocks from the shared whiteboard spreadsheet.
// It is purely structural I/O: no caching, no interpretation of contents.
type SheetSource interface {
	// Grid returns the configured column range of the named sheet as rows
	// of string cells, or ErrSheetNotFound.
	Grid(ctx context.Context, sheetName string) (utils.RawGrid, error)

	// ReadRange reads an arbitrary A1-notation range (roster ranges live
	// on non-date tabs).
	ReadRange(ctx context.Context, a1Range string) (utils.RawGrid, error)
}
