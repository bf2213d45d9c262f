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

func TestReviewList_Average(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews rv")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "id_user", "name", "id_location", "rating", "comment", "created_at"}).
			AddRow(2, 5, "Budi", 1, 5, "mantap", time.Now()).
			AddRow(1, 6, "Sari", 1, 4, nil, time.Now()))

	e := newTestEcho(0)
	e.GET("/locations/:id/reviews", NewReviewHandler(repository.NewReviewRepo(db), repository.NewLocationRepo(db)).List)
	rec := serve(e, http.MethodGet, "/locations/1/reviews", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"average_rating":4.5`)
	assert.Contains(t, rec.Body.String(), `"count":2`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewCreate(t *testing.T) {
	t.Run("rating out of range", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		e := newTestEcho(5)
		e.POST("/locations/:id/reviews", NewReviewHandler(repository.NewReviewRepo(db), repository.NewLocationRepo(db)).Create)
		rec := serve(e, http.MethodPost, "/locations/1/reviews", `{"rating":6}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown location", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM locations WHERE id = ?")).WithArgs(1).
			WillReturnRows(sqlmock.NewRows(locationCols))

		e := newTestEcho(5)
		e.POST("/locations/:id/reviews", NewReviewHandler(repository.NewReviewRepo(db), repository.NewLocationRepo(db)).Create)
		rec := serve(e, http.MethodPost, "/locations/1/reviews", `{"rating":4}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("saved", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM locations WHERE id = ?")).WithArgs(1).
			WillReturnRows(sqlmock.NewRows(locationCols).AddRow(1, "Kolam Galatama", "Jl. Danau 1", "Bogor", nil, "50000", nil, time.Now()))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reviews")).WithArgs(5, 1, 4, "ikan banyak").
			WillReturnResult(sqlmock.NewResult(9, 1))

		e := newTestEcho(5)
		e.POST("/locations/:id/reviews", NewReviewHandler(repository.NewReviewRepo(db), repository.NewLocationRepo(db)).Create)
		rec := serve(e, http.MethodPost, "/locations/1/reviews", `{"rating":4,"comment":"ikan banyak"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":9`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
