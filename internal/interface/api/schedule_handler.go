package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"whiteboard-service/internal/domain/entity"
	"whiteboard-service/internal/domain/repository"
	"whiteboard-service/internal/usecase"
	"whiteboard-service/pkg/logger"
)

// maxRunLookback caps the run history page size.
const maxRunLookback = 50

// ScheduleHandler exposes the schedule query interface consumed by the
// whiteboard widget.
type ScheduleHandler struct {
	query     *usecase.QueryService
	processor *usecase.BatchProcessor
	reports   repository.RunReportRepository
	board     usecase.BoardProvider
	now       func() time.Time
	logger    logger.Logger
}

// NewScheduleHandler creates a new schedule handler. reports may be nil
// when no run history backend is configured.
func NewScheduleHandler(
	query *usecase.QueryService,
	processor *usecase.BatchProcessor,
	reports repository.RunReportRepository,
	board usecase.BoardProvider,
	now func() time.Time,
	logger logger.Logger,
) *ScheduleHandler {
	if now == nil {
		now = time.Now
	}
	return &ScheduleHandler{
		query:     query,
		processor: processor,
		reports:   reports,
		board:     board,
		now:       now,
		logger:    logger,
	}
}

// GetSchedule handles GET /api/v1/schedule?name=&days=&testDate=.
// name "_bulk" returns the whole roster.
func (h *ScheduleHandler) GetSchedule(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return respondError(c, http.StatusBadRequest, CodeMissingName, "name parameter is required", "")
	}

	days := 0
	if d := c.QueryParam("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 0 {
			return respondError(c, http.StatusBadRequest, CodeInvalidDate, "days must be a non-negative integer", d)
		}
		days = parsed
	}
	testDate := c.QueryParam("testDate")

	ctx := c.Request().Context()

	if name == usecase.BulkName {
		resp, err := h.query.QueryBulk(ctx, days, testDate)
		if err != nil {
			return h.queryError(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}

	resp, err := h.query.QueryPerson(ctx, name, days, testDate)
	if err != nil {
		return h.queryError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetCategories handles GET /api/v1/categories.
func (h *ScheduleHandler) GetCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": h.board().Categories,
	})
}

// Refresh handles POST /api/v1/refresh?tier=. It runs one tier pass
// synchronously and returns the run report.
func (h *ScheduleHandler) Refresh(c echo.Context) error {
	tierName := c.QueryParam("tier")
	board := h.board()

	asOf, _, err := usecase.ResolveAsOf(c.QueryParam("testDate"), board.SimulationDate, h.now)
	if err != nil {
		return respondError(c, http.StatusBadRequest, CodeInvalidDate, "testDate must be YYYY-MM-DD", c.QueryParam("testDate"))
	}

	for _, tier := range board.Tiers {
		if tier.Name != tierName {
			continue
		}
		report, err := h.processor.RunTier(c.Request().Context(), tier, asOf)
		if err != nil {
			return respondError(c, http.StatusBadGateway, CodeRosterFailure, "roster resolution failed", err.Error())
		}
		return c.JSON(http.StatusOK, report)
	}

	return respondError(c, http.StatusNotFound, CodeTierNotFound, "no such tier", tierName)
}

// GetRuns handles GET /api/v1/runs?limit=. It returns the most recent
// batch run reports, newest first.
func (h *ScheduleHandler) GetRuns(c echo.Context) error {
	limit := int64(10)
	if l := c.QueryParam("limit"); l != "" {
		parsed, err := strconv.ParseInt(l, 10, 64)
		if err != nil || parsed < 1 {
			return respondError(c, http.StatusBadRequest, CodeInvalidLimit, "limit must be a positive integer", l)
		}
		limit = parsed
	}
	if limit > maxRunLookback {
		limit = maxRunLookback
	}

	runs := []entity.RunReport{}
	if h.reports != nil {
		recent, err := h.reports.Recent(c.Request().Context(), limit)
		if err != nil {
			h.logger.Error("Run history lookup failed", "error", err)
			return respondError(c, http.StatusBadGateway, CodeInternal, "run history unavailable", err.Error())
		}
		runs = recent
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

func (h *ScheduleHandler) queryError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidDate):
		return respondError(c, http.StatusBadRequest, CodeInvalidDate, "testDate must be YYYY-MM-DD", "")
	case errors.Is(err, repository.ErrSheetNotFound):
		return respondError(c, http.StatusNotFound, CodeSheetNotFound, "sheet not found", err.Error())
	default:
		h.logger.Error("Query failed", "error", err)
		return respondError(c, http.StatusBadGateway, CodeRosterFailure, "schedule computation failed", err.Error())
	}
}

// Health is the liveness endpoint.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
