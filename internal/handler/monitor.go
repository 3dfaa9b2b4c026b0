package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"TrendLab/internal/domain/models"
	domainrepo "TrendLab/internal/domain/repository"
	"TrendLab/internal/usecase"
	"TrendLab/pkg/cache"
	"TrendLab/pkg/logger"
)

// Monitor exposes liveness and the latest training report over HTTP.
type Monitor struct {
	log   *logger.Logger
	bars  domainrepo.BarStore
	cache cache.Service
}

func NewMonitor(log *logger.Logger, bars domainrepo.BarStore, cacheSvc cache.Service) *Monitor {
	return &Monitor{log: log, bars: bars, cache: cacheSvc}
}

func (m *Monitor) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", m.health)
	e.GET("/report", m.report)
}

func (m *Monitor) health(c echo.Context) error {
	if err := m.bars.Health(c.Request().Context()); err != nil {
		m.log.Warn("health check failed", logger.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (m *Monitor) report(c echo.Context) error {
	var eval models.Evaluation
	err := m.cache.Get(c.Request().Context(), usecase.ReportCacheKey, &eval)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no training report available"})
		}
		m.log.Error("load report", logger.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "report lookup failed"})
	}
	return c.JSON(http.StatusOK, eval)
}
