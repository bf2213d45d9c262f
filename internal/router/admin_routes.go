package router

import (
	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/middleware"
	"github.com/strikeit/strikeit-api/internal/model"
)

// RegisterAdmin registers back-office endpoints under /admin for the ADMIN role.
func RegisterAdmin(e *echo.Echo, h Handlers, opt Options) {
	g := e.Group("/admin",
		middleware.JWTAuth(opt.JWTSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.PATCH("/bookings/:id/status", h.Admin.SetBookingStatus)
	g.POST("/discounts", h.Admin.CreateDiscount)
}
