package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/repository"
	"github.com/strikeit/strikeit-api/internal/service"
)

// CartHandler serves /cart for the authenticated user.
type CartHandler struct {
	Service *service.CartService
	Repo    *repository.CartRepo
}

func NewCartHandler(svc *service.CartService, repo *repository.CartRepo) *CartHandler {
	return &CartHandler{Service: svc, Repo: repo}
}

// Add handles POST /cart. Adding a product that is already in the cart
// with the same transaction type increases the existing line.
func (h *CartHandler) Add(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req service.AddToCartRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	item, err := h.Service.Add(c.Request().Context(), userID, req)
	if err != nil {
		return respondError(c, err, "failed to add to cart")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "added to cart", "data": item})
}

// List handles GET /cart.
func (h *CartHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	lines, total, err := h.Service.Lines(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "failed to load cart")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": lines, "total": total})
}

// UpdateQuantity handles PUT /cart/:id.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cart item id"})
	}
	var body struct {
		Quantity int `json:"quantity" validate:"required,gte=1"`
	}
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	if err := h.Repo.UpdateQuantity(c.Request().Context(), id, userID, body.Quantity); err != nil {
		return respondError(c, err, "failed to update cart")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "cart updated", "id": id, "quantity": body.Quantity})
}

// Remove handles DELETE /cart/:id.
func (h *CartHandler) Remove(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cart item id"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id, userID); err != nil {
		return respondError(c, err, "failed to remove cart item")
	}
	return c.NoContent(http.StatusNoContent)
}
