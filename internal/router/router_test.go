package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/strikeit/strikeit-api/internal/handler"
	"github.com/strikeit/strikeit-api/internal/repository"
	"github.com/strikeit/strikeit-api/internal/service"
	"github.com/strikeit/strikeit-api/internal/utils"
	"github.com/strikeit/strikeit-api/internal/validator"
)

const secret = "router-secret"

func newServer(t *testing.T) *echo.Echo {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	logger := zaptest.NewLogger(t)

	locs := repository.NewLocationRepo(db)
	products := repository.NewProductRepo(db)
	bookings := repository.NewBookingRepo(db)
	carts := repository.NewCartRepo(db)
	orders := repository.NewOrderRepo(db)
	posts := repository.NewCommunityRepo(db)
	notifications := repository.NewNotificationRepo(db)

	vouchers := service.NewVoucherService(repository.NewDiscountRepo(db), notifications, logger)
	bookingSvc := service.NewBookingService(locs, bookings, logger, 8, 18)
	community := service.NewCommunityService(posts, repository.NewUserRepo(db),
		service.NewOutboxNotifier(notifications, db), logger)

	h := Handlers{
		Catalog:       handler.NewCatalogHandler(locs, products, service.NewAvailabilityService(locs, bookings, 8, 18)),
		Reviews:       handler.NewReviewHandler(repository.NewReviewRepo(db), locs),
		Cart:          handler.NewCartHandler(service.NewCartService(carts, products, logger), carts),
		Orders:        handler.NewOrderHandler(service.NewCheckoutService(carts, orders, vouchers, logger, time.Second), orders),
		Bookings:      handler.NewBookingHandler(bookingSvc, bookings),
		Discounts:     handler.NewDiscountHandler(vouchers),
		Community:     handler.NewCommunityHandler(community, posts),
		Notifications: handler.NewNotificationHandler(notifications),
		Admin:         handler.NewAdminHandler(bookingSvc, vouchers),
		Health:        handler.Health(db),
	}

	e := echo.New()
	e.Validator = validator.EchoValidator{}
	Register(e, h, Options{JWTSecret: secret})
	return e
}

func request(e *echo.Echo, method, target, token string) int {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestRoutes_Auth(t *testing.T) {
	e := newServer(t)
	user, err := utils.NewAccessToken(secret, 5, "USER", time.Hour)
	require.NoError(t, err)
	admin, err := utils.NewAccessToken(secret, 1, "ADMIN", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		target string
		token  string
		want   int
	}{
		{"unknown path", http.MethodGet, "/nope", "", http.StatusNotFound},
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"cart needs token", http.MethodGet, "/cart", "", http.StatusUnauthorized},
		{"orders need token", http.MethodPost, "/orders", "", http.StatusUnauthorized},
		{"bookings need token", http.MethodPost, "/bookings", "", http.StatusUnauthorized},
		{"public availability validates before auth", http.MethodGet, "/locations/1/availability", "", http.StatusBadRequest},
		{"admin rejects user", http.MethodPost, "/admin/discounts", user.Token, http.StatusForbidden},
		{"admin rejects anonymous", http.MethodPost, "/admin/discounts", "", http.StatusUnauthorized},
		{"admin reaches handler", http.MethodPatch, "/admin/bookings/abc/status", admin.Token, http.StatusBadRequest},
		{"user reaches handler", http.MethodGet, "/orders/abc", user.Token, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, request(e, tt.method, tt.target, tt.token))
		})
	}
}
