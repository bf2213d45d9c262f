package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
)

func TestOutboxNotifier_WritesInboxRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications (id_user, title, body, type, ref_id) VALUES (?, ?, ?, ?, ?)")).
		WithArgs(2, "Komentar baru", "Budi: mantap", model.NotifyCommunity, 10).
		WillReturnResult(sqlmock.NewResult(31, 1))

	ref := uint64(10)
	n := &model.Notification{UserID: 2, Title: "Komentar baru", Body: "Budi: mantap", Type: model.NotifyCommunity, RefID: &ref}
	err = NewOutboxNotifier(repository.NewNotificationRepo(db), db).Notify(context.Background(), n)
	require.NoError(t, err)
	assert.EqualValues(t, 31, n.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
