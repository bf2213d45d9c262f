package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/repository"
	"github.com/strikeit/strikeit-api/internal/service"
)

// CatalogHandler serves the public location and product endpoints.
type CatalogHandler struct {
	Locations *repository.LocationRepo
	Products  *repository.ProductRepo
	Avail     *service.AvailabilityService
}

func NewCatalogHandler(locations *repository.LocationRepo, products *repository.ProductRepo, availability *service.AvailabilityService) *CatalogHandler {
	if locations == nil || products == nil || availability == nil {
		panic("nil dependency passed to NewCatalogHandler")
	}
	return &CatalogHandler{Locations: locations, Products: products, Avail: availability}
}

// ListLocations handles GET /locations.
func (h *CatalogHandler) ListLocations(c echo.Context) error {
	locs, err := h.Locations.ListAll(c.Request().Context())
	if err != nil {
		return respondError(c, err, "failed to load locations")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": locs})
}

// GetLocation handles GET /locations/:id and includes spots and images.
func (h *CatalogHandler) GetLocation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	det, err := h.Locations.GetDetail(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to load location")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": det})
}

func queryDate(c echo.Context) (string, bool) {
	date := strings.TrimSpace(c.QueryParam("date"))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", false
	}
	return date, true
}

// Availability handles GET /locations/:id/availability?date=YYYY-MM-DD.
func (h *CatalogHandler) Availability(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	date, ok := queryDate(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required (YYYY-MM-DD)"})
	}
	grid, err := h.Avail.Hourly(c.Request().Context(), id, date)
	if err != nil {
		return respondError(c, err, "failed to compute availability")
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "data": grid})
}

// Spots handles GET /locations/:id/spots?date=&hour=&duration=. Without
// hour every spot with a live booking that day is reported booked.
func (h *CatalogHandler) Spots(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	date, ok := queryDate(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required (YYYY-MM-DD)"})
	}
	var hour *int
	if raw := c.QueryParam("hour"); raw != "" {
		h, err := strconv.Atoi(raw)
		if err != nil || h < 0 || h > 23 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "hour must be 0-23"})
		}
		hour = &h
	}
	duration := service.DefaultSpotDuration
	if raw := c.QueryParam("duration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 1 || d > 24 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration must be 1-24"})
		}
		duration = d
	}
	spots, err := h.Avail.Spots(c.Request().Context(), id, date, hour, duration)
	if err != nil {
		return respondError(c, err, "failed to compute spot availability")
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "data": spots})
}

// ListProducts handles GET /products?category=.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	products, err := h.Products.List(c.Request().Context(), strings.TrimSpace(c.QueryParam("category")))
	if err != nil {
		return respondError(c, err, "failed to load products")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": products})
}

// GetProduct handles GET /products/:id.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	p, err := h.Products.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to load product")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}
