package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
)

type recordingNotifier struct {
	sent []*model.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n *model.Notification) error {
	r.sent = append(r.sent, n)
	return r.err
}

const (
	lockPostSQL    = "SELECT likes_count FROM community_posts WHERE id = ? FOR UPDATE"
	postOwnerSQL   = "SELECT id_user FROM community_posts WHERE id = ?"
	parentSQL      = "SELECT id_post, parent_id FROM community_comments WHERE id = ?"
	userByIDSQL    = "SELECT id,name,email,role,push_token,created_at FROM users WHERE id=? LIMIT 1"
	likeExistsSQL  = "SELECT 1 FROM community_likes WHERE id_post = ? AND id_user = ?"
	setLikesSQL    = "UPDATE community_posts SET likes_count = ? WHERE id = ?"
	bumpRepliesSQL = "UPDATE community_posts SET reply_count = reply_count + 1 WHERE id = ?"
)

func newCommunityService(t *testing.T, db *sql.DB, n Notifier) *CommunityService {
	return NewCommunityService(repository.NewCommunityRepo(db), repository.NewUserRepo(db), n, zaptest.NewLogger(t))
}

func expectCommentInsert(mock sqlmock.Sqlmock, commentID int64) {
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO community_comments")).WillReturnResult(sqlmock.NewResult(commentID, 1))
	mock.ExpectExec(regexp.QuoteMeta(bumpRepliesSQL)).WithArgs(10).WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestAddComment_NotifiesPostOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPostSQL)).WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"likes_count"}).AddRow(3))
	expectCommentInsert(mock, 55)
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(postOwnerSQL)).WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id_user"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(userByIDSQL)).WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "push_token", "created_at"}).
			AddRow(9, "Budi", "budi@example.com", model.RoleUser, nil, time.Now()))

	n := &recordingNotifier{}
	content := strings.Repeat("ikan ", 30)
	c, err := newCommunityService(t, db, n).AddComment(context.Background(), 9, 10, content, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 55, c.ID)
	assert.Equal(t, "Budi", c.AuthorName)

	require.Len(t, n.sent, 1)
	sent := n.sent[0]
	assert.EqualValues(t, 2, sent.UserID)
	assert.Equal(t, model.NotifyCommunity, sent.Type)
	require.NotNil(t, sent.RefID)
	assert.EqualValues(t, 10, *sent.RefID)
	assert.True(t, strings.HasPrefix(sent.Body, "Budi: ikan"))
	assert.True(t, strings.HasSuffix(sent.Body, "…"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddComment_OwnCommentIsNotNotified(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPostSQL)).WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"likes_count"}).AddRow(0))
	expectCommentInsert(mock, 56)
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(postOwnerSQL)).WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id_user"}).AddRow(9))

	n := &recordingNotifier{}
	_, err = newCommunityService(t, db, n).AddComment(context.Background(), 9, 10, "mantap", nil)
	require.NoError(t, err)
	assert.Empty(t, n.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddComment_NotifierFailureDoesNotFailComment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPostSQL)).WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"likes_count"}).AddRow(0))
	expectCommentInsert(mock, 57)
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(postOwnerSQL)).WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id_user"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(userByIDSQL)).WithArgs(9).
		WillReturnError(errors.New("connection reset"))

	n := &recordingNotifier{err: errors.New("outbox unavailable")}
	c, err := newCommunityService(t, db, n).AddComment(context.Background(), 9, 10, "mantap", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 57, c.ID)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "Seseorang: mantap", n.sent[0].Body)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddComment_ReplyValidation(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
	}{
		{"parent on another post", sqlmock.NewRows([]string{"id_post", "parent_id"}).AddRow(11, nil)},
		{"parent is itself a reply", sqlmock.NewRows([]string{"id_post", "parent_id"}).AddRow(10, 4)},
		{"parent missing", sqlmock.NewRows([]string{"id_post", "parent_id"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta(lockPostSQL)).WithArgs(10).
				WillReturnRows(sqlmock.NewRows([]string{"likes_count"}).AddRow(0))
			mock.ExpectQuery(regexp.QuoteMeta(parentSQL)).WithArgs(5).WillReturnRows(tt.rows)
			mock.ExpectRollback()

			parent := uint64(5)
			n := &recordingNotifier{}
			_, err = newCommunityService(t, db, n).AddComment(context.Background(), 9, 10, "balas", &parent)
			assert.ErrorIs(t, err, ErrInvalidParentComment)
			assert.Empty(t, n.sent)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAddComment_UnknownPost(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPostSQL)).WithArgs(10).WillReturnRows(sqlmock.NewRows([]string{"likes_count"}))
	mock.ExpectRollback()

	_, err = newCommunityService(t, db, &recordingNotifier{}).AddComment(context.Background(), 9, 10, "halo", nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLike(t *testing.T) {
	t.Run("like", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockPostSQL)).WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"likes_count"}).AddRow(4))
		mock.ExpectQuery(regexp.QuoteMeta(likeExistsSQL)).WithArgs(10, 9).WillReturnRows(sqlmock.NewRows([]string{"1"}))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO community_likes")).WithArgs(10, 9).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta(setLikesSQL)).WithArgs(5, 10).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		liked, count, err := newCommunityService(t, db, &recordingNotifier{}).ToggleLike(context.Background(), 10, 9)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, 5, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unlike never goes below zero", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockPostSQL)).WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"likes_count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta(likeExistsSQL)).WithArgs(10, 9).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM community_likes")).WithArgs(10, 9).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(setLikesSQL)).WithArgs(0, 10).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		liked, count, err := newCommunityService(t, db, &recordingNotifier{}).ToggleLike(context.Background(), 10, 9)
		require.NoError(t, err)
		assert.False(t, liked)
		assert.Equal(t, 0, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNestComments(t *testing.T) {
	id := func(v uint64) *uint64 { return &v }
	flat := []model.Comment{
		{ID: 1, Content: "first"},
		{ID: 2, Content: "second"},
		{ID: 3, ParentID: id(1), Content: "reply to first"},
		{ID: 4, ParentID: id(2), Content: "reply to second"},
		{ID: 5, ParentID: id(1), Content: "another reply to first"},
		{ID: 6, ParentID: id(99), Content: "orphan"},
	}

	got := NestComments(flat)
	require.Len(t, got, 3)
	assert.EqualValues(t, 1, got[0].ID)
	assert.EqualValues(t, 2, got[1].ID)
	assert.EqualValues(t, 6, got[2].ID)

	require.Len(t, got[0].Replies, 2)
	assert.EqualValues(t, 3, got[0].Replies[0].ID)
	assert.EqualValues(t, 5, got[0].Replies[1].ID)
	require.Len(t, got[1].Replies, 1)
	assert.EqualValues(t, 4, got[1].Replies[0].ID)

	assert.Empty(t, NestComments(nil))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "pendek", snippet("pendek"))
	long := strings.Repeat("é", 100)
	got := snippet(long)
	assert.Equal(t, strings.Repeat("é", 80)+"…", got)
}
