// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/handler"
	"github.com/strikeit/strikeit-api/internal/middleware"
)

// Handlers bundles everything the routes point at.
type Handlers struct {
	Catalog       *handler.CatalogHandler
	Reviews       *handler.ReviewHandler
	Cart          *handler.CartHandler
	Orders        *handler.OrderHandler
	Bookings      *handler.BookingHandler
	Discounts     *handler.DiscountHandler
	Community     *handler.CommunityHandler
	Notifications *handler.NotificationHandler
	Admin         *handler.AdminHandler
	Health        echo.HandlerFunc
}

// Options carries the middleware each group needs.
type Options struct {
	JWTSecret string
	Cache     echo.MiddlewareFunc // applied to catalogue reads only
	RateLimit echo.MiddlewareFunc
}

// RegisterRoutes registers operational endpoints that bypass auth and rate
// limiting.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", middleware.PrometheusHandler())
}

// Register mounts every route group.
func Register(e *echo.Echo, h Handlers, opt Options) {
	RegisterRoutes(e, h)
	RegisterPublic(e, h, opt)
	RegisterUser(e, h, opt)
	RegisterAdmin(e, h, opt)
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func orPass(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m == nil {
		return passThrough
	}
	return m
}
