package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
)

type ReviewHandler struct {
	Reviews   *repository.ReviewRepo
	Locations *repository.LocationRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo, locations *repository.LocationRepo) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews, Locations: locations}
}

// List handles GET /locations/:id/reviews.
func (h *ReviewHandler) List(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	reviews, avg, err := h.Reviews.ListByLocation(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to load reviews")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": reviews, "average_rating": avg, "count": len(reviews)})
}

// Create handles POST /locations/:id/reviews.
func (h *ReviewHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	var body struct {
		Rating  int     `json:"rating" validate:"required,gte=1,lte=5"`
		Comment *string `json:"comment" validate:"omitempty,max=2000"`
	}
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.Locations.GetByID(ctx, id); err != nil {
		return respondError(c, err, "failed to load location")
	}
	rv := &model.Review{UserID: userID, LocationID: id, Rating: body.Rating, Comment: body.Comment}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		return respondError(c, err, "failed to save review")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "review saved", "data": rv})
}
