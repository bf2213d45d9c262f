package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterPublic registers the unauthenticated browse endpoints. Location
// and product reads go through the response cache; availability never
// does.
func RegisterPublic(e *echo.Echo, h Handlers, opt Options) {
	rl := orPass(opt.RateLimit)
	cache := orPass(opt.Cache)

	e.GET("/locations", h.Catalog.ListLocations, rl, cache)
	e.GET("/locations/:id", h.Catalog.GetLocation, rl, cache)
	e.GET("/locations/:id/availability", h.Catalog.Availability, rl)
	e.GET("/locations/:id/spots", h.Catalog.Spots, rl)
	e.GET("/locations/:id/reviews", h.Reviews.List, rl)

	e.GET("/products", h.Catalog.ListProducts, rl, cache)
	e.GET("/products/:id", h.Catalog.GetProduct, rl, cache)

	e.GET("/discounts/:code", h.Discounts.Preview, rl)

	e.GET("/community/posts", h.Community.ListPosts, rl)
	e.GET("/community/posts/:id", h.Community.GetPost, rl)
	e.GET("/community/posts/:id/comments", h.Community.ListComments, rl)
}
