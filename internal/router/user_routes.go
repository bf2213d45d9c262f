package router

import (
	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/middleware"
	"github.com/strikeit/strikeit-api/internal/model"
)

// RegisterUser registers endpoints that act on the caller's own data. Both
// USER and ADMIN tokens are accepted. The limiter runs after JWTAuth so
// user-based keys see the subject. Middleware is attached per route because
// these paths share prefixes with the public ones.
func RegisterUser(e *echo.Echo, h Handlers, opt Options) {
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(opt.JWTSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
		orPass(opt.RateLimit),
	}

	e.POST("/cart", h.Cart.Add, mw...)
	e.GET("/cart", h.Cart.List, mw...)
	e.PUT("/cart/:id", h.Cart.UpdateQuantity, mw...)
	e.DELETE("/cart/:id", h.Cart.Remove, mw...)

	e.POST("/orders", h.Orders.Create, mw...)
	e.GET("/orders/my-orders", h.Orders.ListMine, mw...)
	e.GET("/orders/:id", h.Orders.Get, mw...)

	e.POST("/bookings", h.Bookings.Create, mw...)
	e.GET("/bookings/my-bookings", h.Bookings.ListMine, mw...)
	e.GET("/bookings/:id", h.Bookings.Get, mw...)
	e.POST("/bookings/:id/cancel", h.Bookings.Cancel, mw...)
	e.POST("/bookings/:id/payment", h.Bookings.Pay, mw...)

	e.POST("/locations/:id/reviews", h.Reviews.Create, mw...)

	e.POST("/community/posts", h.Community.CreatePost, mw...)
	e.POST("/community/posts/:id/comments", h.Community.CreateComment, mw...)
	e.POST("/community/posts/:id/like", h.Community.ToggleLike, mw...)

	e.GET("/notifications", h.Notifications.List, mw...)
	e.PATCH("/notifications/read-all", h.Notifications.MarkAllRead, mw...)
	e.PATCH("/notifications/:id/read", h.Notifications.MarkRead, mw...)
}
