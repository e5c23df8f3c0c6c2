package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires the widget-facing API onto the Echo instance.
func RegisterRoutes(e *echo.Echo, h *ScheduleHandler) {
	e.GET("/healthz", Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	g := e.Group("/api/v1")
	g.GET("/schedule", h.GetSchedule)
	g.GET("/categories", h.GetCategories)
	g.GET("/runs", h.GetRuns)
	g.POST("/refresh", h.Refresh)
}
