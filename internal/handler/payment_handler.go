package handler

import (
	"net/http"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/dto"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/service"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) RegisterRoutes(public *echo.Group) {
	public.POST("/payments/:provider/initialize", h.Initialize)
	// providers redirect the customer (GET) or call back server to server (POST)
	public.GET("/payments/:provider/verify/:reference", h.Verify)
	public.POST("/payments/:provider/verify/:reference", h.Verify)
}

func (h *PaymentHandler) Initialize(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.svc.InitializePayment(c.Request().Context(), c.Param("provider"), req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *PaymentHandler) Verify(c echo.Context) error {
	booking, err := h.svc.VerifyPayment(c.Request().Context(), c.Param("provider"), c.Param("reference"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}
