package handler

import (
	"net/http"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/dto"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// RegisterRoutes mounts the customer endpoints on public and the operator
// endpoints on admin.
func (h *BookingHandler) RegisterRoutes(public, admin *echo.Group) {
	public.POST("/bookings", h.CreateBooking)
	public.GET("/bookings/:id", h.GetBooking)

	admin.GET("/bookings", h.ListBookings)
	admin.PATCH("/bookings/:id/status", h.UpdateStatus)
	admin.DELETE("/bookings/:id", h.DeleteBooking)
	admin.POST("/bookings/bulk-delete", h.BulkDelete)
	admin.POST("/bookings/:id/reschedule", h.Reschedule)
	admin.POST("/bookings/:id/refund-request", h.RequestRefund)
}

// bind decodes and validates the request body.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	booking, err := h.svc.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	filter := repository.BookingFilter{
		Date:   c.QueryParam("date"),
		TripID: c.QueryParam("trip_id"),
	}
	if s := c.QueryParam("status"); s != "" {
		status := models.BookingStatus(s)
		if !status.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		filter.Status = &status
	}

	bookings, err := h.svc.ListBookings(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponses(bookings))
}

func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	var req dto.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	booking, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	if err := h.svc.DeleteBooking(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHandler) BulkDelete(c echo.Context) error {
	var req dto.BulkDeleteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.svc.DeleteBookings(c.Request().Context(), req.ToService())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) Reschedule(c echo.Context) error {
	var req dto.RescheduleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	booking, err := h.svc.Reschedule(c.Request().Context(), c.Param("id"), req.Date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) RequestRefund(c echo.Context) error {
	if err := h.svc.RequestRefund(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, map[string]string{"message": "refund request sent"})
}
