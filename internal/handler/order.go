package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/middleware"
	"github.com/strikeit/strikeit-api/internal/repository"
	"github.com/strikeit/strikeit-api/internal/service"
)

type OrderHandler struct {
	Checkout *service.CheckoutService
	Orders   *repository.OrderRepo
}

func NewOrderHandler(checkout *service.CheckoutService, orders *repository.OrderRepo) *OrderHandler {
	return &OrderHandler{Checkout: checkout, Orders: orders}
}

// Create handles POST /orders. Every failure after validation, an empty
// cart included, is answered with 500 and the error message; the app
// resubmits.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req service.CheckoutRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.Checkout.Checkout(c.Request().Context(), userID, req)
	if err != nil {
		c.Set(middleware.ContextError, err)
		msg := "checkout failed"
		if errors.Is(err, service.ErrCartEmpty) || errors.Is(err, service.ErrInvalidDiscountValue) {
			msg = err.Error()
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":         "order created",
		"data":            res.Order,
		"voucher_applied": res.VoucherApplied,
	})
}

// ListMine handles GET /orders/my-orders.
func (h *OrderHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Orders.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "failed to load orders")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": orders})
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	o, err := h.Orders.GetByIDForUser(c.Request().Context(), id, userID)
	if err != nil {
		return respondError(c, err, "failed to load order")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": o})
}
