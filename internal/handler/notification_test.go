package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikeit/strikeit-api/internal/repository"
)

func TestNotificationList_CountsUnread(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "id_user", "title", "body", "type", "ref_id", "is_read", "attempts", "published_at", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE id_user = ?")).WithArgs(5, 100).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(3, 5, "a", "b", "discount", nil, false, 1, time.Now(), time.Now()).
			AddRow(2, 5, "c", "d", "community", 10, true, 1, time.Now(), time.Now()).
			AddRow(1, 5, "e", "f", "community", 10, false, 0, nil, time.Now()))

	e := newTestEcho(5)
	e.GET("/notifications", NewNotificationHandler(repository.NewNotificationRepo(db)).List)
	rec := serve(e, http.MethodGet, "/notifications?limit=500", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unread":2`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
