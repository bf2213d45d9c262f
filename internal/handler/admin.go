package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/service"
)

// AdminHandler holds the endpoints behind RequireRole(ADMIN).
type AdminHandler struct {
	Bookings *service.BookingService
	Vouchers *service.VoucherService
}

func NewAdminHandler(bookings *service.BookingService, vouchers *service.VoucherService) *AdminHandler {
	return &AdminHandler{Bookings: bookings, Vouchers: vouchers}
}

// SetBookingStatus handles PATCH /admin/bookings/:id/status.
func (h *AdminHandler) SetBookingStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Status string `json:"status" validate:"required,oneof=confirmed cancelled completed"`
	}
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	b, err := h.Bookings.SetStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		return respondError(c, err, "failed to update booking")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking updated", "data": b})
}

type createDiscountRequest struct {
	Code          string `json:"code" validate:"required,max=50"`
	Title         string `json:"title" validate:"required,max=150"`
	DiscountValue string `json:"discount_value" validate:"required,discount_value"`
	MaxUsage      int    `json:"max_usage" validate:"required,gte=1"`
}

// CreateDiscount handles POST /admin/discounts. Every user receives a
// discount notification.
func (h *AdminHandler) CreateDiscount(c echo.Context) error {
	var req createDiscountRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	d := &model.Discount{
		Code:          strings.TrimSpace(req.Code),
		Title:         req.Title,
		DiscountValue: strings.TrimSpace(req.DiscountValue),
		MaxUsage:      req.MaxUsage,
	}
	notified, err := h.Vouchers.Create(c.Request().Context(), d)
	if err != nil {
		return respondError(c, err, "failed to create discount")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "discount created", "data": d, "notified": notified})
}
