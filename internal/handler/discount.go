package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/service"
)

type DiscountHandler struct {
	Vouchers *service.VoucherService
}

func NewDiscountHandler(vouchers *service.VoucherService) *DiscountHandler {
	return &DiscountHandler{Vouchers: vouchers}
}

// Preview handles GET /discounts/:code. It does not consume a redemption.
func (h *DiscountHandler) Preview(c echo.Context) error {
	d, err := h.Vouchers.Preview(c.Request().Context(), c.Param("code"))
	if err != nil {
		return respondError(c, err, "failed to load discount")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"code":           d.Code,
		"title":          d.Title,
		"discount_value": d.DiscountValue,
		"remaining":      d.Remaining(),
		"valid":          d.Remaining() > 0,
	})
}
