package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/repository"
	"github.com/strikeit/strikeit-api/internal/service"
)

// BookingHandler serves spot bookings for the authenticated user.
type BookingHandler struct {
	Service *service.BookingService
	Repo    *repository.BookingRepo
}

func NewBookingHandler(svc *service.BookingService, repo *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{Service: svc, Repo: repo}
}

// Create handles POST /bookings. A spot that is taken or a location that is
// full for any of the requested hours yields 409.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req service.CreateBookingRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	b, err := h.Service.Create(c.Request().Context(), userID, req)
	if err != nil {
		return respondError(c, err, "failed to create booking")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "booking created", "data": b})
}

// ListMine handles GET /bookings/my-bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Repo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "failed to load bookings")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": list})
}

// Get handles GET /bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Repo.GetByIDForUser(c.Request().Context(), id, userID)
	if err != nil {
		return respondError(c, err, "failed to load booking")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": b})
}

// Cancel handles POST /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Service.Cancel(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, err, "failed to cancel booking")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled", "data": b})
}

// Pay handles POST /bookings/:id/payment with {"payment_status":"paid"|"failed"}.
func (h *BookingHandler) Pay(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		PaymentStatus string `json:"payment_status" validate:"required,oneof=paid failed"`
	}
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	b, err := h.Service.RecordPayment(c.Request().Context(), userID, id, body.PaymentStatus)
	if err != nil {
		return respondError(c, err, "failed to record payment")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment recorded", "data": b})
}
