package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/repository"
)

const maxInbox = 100

type NotificationHandler struct {
	Repo *repository.NotificationRepo
}

func NewNotificationHandler(repo *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Repo: repo}
}

// List handles GET /notifications?limit=.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := 50
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		limit = min(n, maxInbox)
	}
	list, err := h.Repo.ListByUser(c.Request().Context(), userID, limit)
	if err != nil {
		return respondError(c, err, "failed to load notifications")
	}
	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": list, "unread": unread})
}

// MarkRead handles PATCH /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	if err := h.Repo.MarkRead(c.Request().Context(), id, userID); err != nil {
		return respondError(c, err, "failed to update notification")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "notification marked as read"})
}

// MarkAllRead handles PATCH /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	n, err := h.Repo.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "failed to update notifications")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "notifications marked as read", "updated": n})
}
