package sheets

import (
	"context"
	"errors"
	"fmt"

	"whiteboard-service/internal/domain/repository"
	"whiteboard-service/pkg/logger"
	"whiteboard-service/pkg/utils"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// BoardLocator yields the current spreadsheet ID and per-sheet read range.
// It is a function so descriptor hot-reloads take effect on the next read.
type BoardLocator func() (spreadsheetID, readRange string)

// SheetsReader implements repository.SheetSource against the Sheets API.
// It returns raw cell grids and never interprets their contents.
type SheetsReader struct {
	service *sheetsapi.Service
	locate  BoardLocator
	logger  logger.Logger
}

// NewSheetsReader creates a new Sheets API reader
func NewSheetsReader(ctx context.Context, tokenSource oauth2.TokenSource, locate BoardLocator, logger logger.Logger) (*SheetsReader, error) {
	service, err := sheetsapi.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &SheetsReader{
		service: service,
		locate:  locate,
		logger:  logger,
	}, nil
}

// Grid reads the configured column range of one date-named tab.
func (r *SheetsReader) Grid(ctx context.Context, sheetName string) (utils.RawGrid, error) {
	_, readRange := r.locate()
	return r.ReadRange(ctx, fmt.Sprintf("'%s'!%s", sheetName, readRange))
}

// ReadRange reads an arbitrary A1-notation range.
func (r *SheetsReader) ReadRange(ctx context.Context, a1Range string) (utils.RawGrid, error) {
	spreadsheetID, _ := r.locate()

	resp, err := r.service.Spreadsheets.Values.Get(spreadsheetID, a1Range).Context(ctx).Do()
	if err != nil {
		// The API reports a missing tab as an unparsable range.
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 400 {
			return nil, repository.ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to read range %s: %w", a1Range, err)
	}

	grid := make(utils.RawGrid, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprint(cell)
		}
		grid[i] = cells
	}

	r.logger.Debug("Range read", "range", a1Range, "rows", len(grid))
	return grid, nil
}
