package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/dto"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/service"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type TripFinder interface {
	Find(ctx context.Context, filter repository.TripFilter) ([]models.Trip, error)
}

type TripResetter interface {
	ClearAll(ctx context.Context) (*service.ResetResult, error)
}

type Resyncer interface {
	Resync(ctx context.Context) (*service.ResyncReport, error)
}

type AlertManager interface {
	List(ctx context.Context, resolved *bool) ([]models.Alert, error)
	Resolve(ctx context.Context, id string) error
}

// settingParsers lists the runtime settings operators may change and how
// each value is checked.
var settingParsers = map[string]func(string) error{
	service.SettingConfirmPendingOnFull: func(v string) error {
		_, err := strconv.ParseBool(v)
		return err
	},
}

type AdminHandler struct {
	trips    TripFinder
	resetter TripResetter
	resync   Resyncer
	rules    service.PriceRuleService
	alerts   AlertManager
	settings repository.SettingRepository
}

func NewAdminHandler(
	trips TripFinder,
	resetter TripResetter,
	resync Resyncer,
	rules service.PriceRuleService,
	alerts AlertManager,
	settings repository.SettingRepository,
) *AdminHandler {
	return &AdminHandler{
		trips:    trips,
		resetter: resetter,
		resync:   resync,
		rules:    rules,
		alerts:   alerts,
		settings: settings,
	}
}

func (h *AdminHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/trips", h.ListTrips)
	admin.POST("/trips/reset", h.ResetTrips)
	admin.POST("/trips/resync", h.Resync)

	admin.GET("/price-rules", h.ListPriceRules)
	admin.GET("/price-rules/:id", h.GetPriceRule)
	admin.PUT("/price-rules", h.SavePriceRule)
	admin.DELETE("/price-rules/:id", h.DeletePriceRule)

	admin.GET("/alerts", h.ListAlerts)
	admin.POST("/alerts/:id/resolve", h.ResolveAlert)

	admin.GET("/settings/:key", h.GetSetting)
	admin.PUT("/settings/:key", h.PutSetting)
}

func (h *AdminHandler) ListTrips(c echo.Context) error {
	filter := repository.TripFilter{
		Date:        c.QueryParam("date"),
		PriceRuleID: c.QueryParam("price_rule_id"),
	}
	if s := c.QueryParam("full"); s != "" {
		full, err := strconv.ParseBool(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "full must be true or false")
		}
		filter.IsFull = &full
	}

	trips, err := h.trips.Find(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.TripResponse, len(trips))
	for i := range trips {
		resp[i] = dto.ToTripResponse(&trips[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ResetTrips(c echo.Context) error {
	result, err := h.resetter.ClearAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) Resync(c echo.Context) error {
	report, err := h.resync.Resync(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) ListPriceRules(c echo.Context) error {
	rules, err := h.rules.ListRules(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rules)
}

func (h *AdminHandler) GetPriceRule(c echo.Context) error {
	rule, err := h.rules.GetRule(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rule)
}

func (h *AdminHandler) SavePriceRule(c echo.Context) error {
	var req dto.PriceRuleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rule, err := h.rules.SaveRule(c.Request().Context(), req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rule)
}

func (h *AdminHandler) DeletePriceRule(c echo.Context) error {
	if err := h.rules.DeleteRule(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListAlerts(c echo.Context) error {
	var resolved *bool
	if s := c.QueryParam("resolved"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "resolved must be true or false")
		}
		resolved = &v
	}

	alerts, err := h.alerts.List(c.Request().Context(), resolved)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *AdminHandler) ResolveAlert(c echo.Context) error {
	if err := h.alerts.Resolve(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) GetSetting(c echo.Context) error {
	key := c.Param("key")
	if _, ok := settingParsers[key]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown setting")
	}

	s, err := h.settings.Get(c.Request().Context(), key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "setting not set")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AdminHandler) PutSetting(c echo.Context) error {
	key := c.Param("key")
	parse, ok := settingParsers[key]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown setting")
	}

	var req dto.SettingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := parse(req.Value); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid value for "+key)
	}

	if err := h.settings.Set(c.Request().Context(), key, req.Value); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Setting{Key: key, Value: req.Value})
}
