// Package handler binds the services and repositories to HTTP.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/middleware"
	"github.com/strikeit/strikeit-api/internal/repository"
	"github.com/strikeit/strikeit-api/internal/service"
	"github.com/strikeit/strikeit-api/internal/validator"
)

// getUserID extracts the user_id set by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get(middleware.ContextUserID).(type) {
	case uint64:
		return t, nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// bindValid decodes the body into dst and runs the registered validator.
// On failure it has already written the 400 response and returns false.
func bindValid(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(dst); err != nil {
		var ve *validator.ValidationError
		if errors.As(err, &ve) {
			return false, c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "fields": ve.Fields})
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return true, nil
}

// statusFor maps domain errors to HTTP statuses. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, service.ErrSpotTaken),
		errors.Is(err, service.ErrLocationFull),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrOutsideOperatingHours),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrUnknownSpot),
		errors.Is(err, service.ErrInvalidDiscountValue),
		errors.Is(err, service.ErrInvalidParentComment):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Internal errors are replaced
// by fallback in the body and kept on the context for the request log.
func respondError(c echo.Context, err error, fallback string) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.Set(middleware.ContextError, err)
		return c.JSON(status, echo.Map{"error": fallback})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
