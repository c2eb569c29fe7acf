package handler

import (
	"context"
	"net/http"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/service"
	"github.com/labstack/echo/v4"
)

type DailyRescheduler interface {
	RunDaily(ctx context.Context) (*service.RescheduleReport, error)
}

type RetentionCleaner interface {
	Run(ctx context.Context) (*service.CleanupReport, error)
}

// CronHandler exposes the scheduled jobs to an external scheduler.
type CronHandler struct {
	rescheduler DailyRescheduler
	cleaner     RetentionCleaner
}

func NewCronHandler(rescheduler DailyRescheduler, cleaner RetentionCleaner) *CronHandler {
	return &CronHandler{rescheduler: rescheduler, cleaner: cleaner}
}

func (h *CronHandler) RegisterRoutes(cron *echo.Group) {
	cron.POST("/reschedule", h.Reschedule)
	cron.POST("/cleanup", h.Cleanup)
}

func (h *CronHandler) Reschedule(c echo.Context) error {
	report, err := h.rescheduler.RunDaily(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func (h *CronHandler) Cleanup(c echo.Context) error {
	report, err := h.cleaner.Run(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
