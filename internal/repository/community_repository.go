package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/strikeit/strikeit-api/internal/model"
)

// CommunityRepo persists posts, comments and likes. The post counters
// (views, likes, replies) are maintained here alongside the rows they count.
type CommunityRepo struct {
	db *sql.DB
}

func NewCommunityRepo(db *sql.DB) *CommunityRepo { return &CommunityRepo{db: db} }

// DB exposes the handle for callers that run a transaction.
func (r *CommunityRepo) DB() *sql.DB { return r.db }

const postSelect = `SELECT p.id, p.id_user, COALESCE(u.name, ''), p.title, p.content, p.image_url,
                           p.views_count, p.likes_count, p.reply_count, p.created_at
                    FROM community_posts p
                    LEFT JOIN users u ON u.id = p.id_user`

func scanPost(row interface{ Scan(...any) error }) (model.Post, error) {
	var p model.Post
	var img sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.AuthorName, &p.Title, &p.Content, &img,
		&p.ViewsCount, &p.LikesCount, &p.ReplyCount, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	if img.Valid {
		p.ImageURL = &img.String
	}
	return p, nil
}

// ListPosts returns a page of posts, newest first.
func (r *CommunityRepo) ListPosts(ctx context.Context, limit, offset int) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, postSelect+` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPost returns one post or ErrNotFound.
func (r *CommunityRepo) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// IncrementViews bumps views_count; ErrNotFound when the post does not exist.
func (r *CommunityRepo) IncrementViews(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE community_posts SET views_count = views_count + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePost inserts a post and populates its ID.
func (r *CommunityRepo) CreatePost(ctx context.Context, p *model.Post) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO community_posts (id_user, title, content, image_url) VALUES (?, ?, ?, ?)`,
		p.UserID, p.Title, p.Content, p.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// PostOwner returns the author of a post.
func (r *CommunityRepo) PostOwner(ctx context.Context, q DBTX, postID uint64) (uint64, error) {
	var owner uint64
	if err := q.QueryRowContext(ctx, `SELECT id_user FROM community_posts WHERE id = ?`, postID).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return owner, nil
}

// LockPostTx takes a row lock on the post and returns its like counter.
func (r *CommunityRepo) LockPostTx(ctx context.Context, tx *sql.Tx, postID uint64) (int, error) {
	var likes int
	if err := tx.QueryRowContext(ctx, `SELECT likes_count FROM community_posts WHERE id = ? FOR UPDATE`, postID).Scan(&likes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return likes, nil
}

// CommentParentPost returns the post a comment belongs to and whether the
// comment is itself a reply.
func (r *CommunityRepo) CommentParentPost(ctx context.Context, q DBTX, commentID uint64) (postID uint64, isReply bool, err error) {
	var parent sql.NullInt64
	err = q.QueryRowContext(ctx, `SELECT id_post, parent_id FROM community_comments WHERE id = ?`, commentID).Scan(&postID, &parent)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, ErrNotFound
	}
	return postID, parent.Valid, err
}

// CreateCommentTx inserts a comment and bumps the post's reply_count.
func (r *CommunityRepo) CreateCommentTx(ctx context.Context, tx *sql.Tx, c *model.Comment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO community_comments (id_post, id_user, parent_id, content) VALUES (?, ?, ?, ?)`,
		c.PostID, c.UserID, c.ParentID, c.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	_, err = tx.ExecContext(ctx, `UPDATE community_posts SET reply_count = reply_count + 1 WHERE id = ?`, c.PostID)
	return err
}

// ListComments returns the post's comments in creation order, flat. The
// service nests replies under their parents.
func (r *CommunityRepo) ListComments(ctx context.Context, postID uint64) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.id_post, c.id_user, COALESCE(u.name, ''), c.parent_id, c.content, c.created_at
         FROM community_comments c
         LEFT JOIN users u ON u.id = c.id_user
         WHERE c.id_post = ?
         ORDER BY c.created_at, c.id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Comment, 0)
	for rows.Next() {
		var c model.Comment
		var parent sql.NullInt64
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.AuthorName, &parent, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		if parent.Valid {
			pid := uint64(parent.Int64)
			c.ParentID = &pid
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ToggleLikeTx flips the user's like on a post and returns whether the post
// is now liked and the new counter. The post row must already be locked by
// LockPostTx. likes_count never drops below zero.
func (r *CommunityRepo) ToggleLikeTx(ctx context.Context, tx *sql.Tx, postID, userID uint64, likes int) (bool, int, error) {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM community_likes WHERE id_post = ? AND id_user = ?`, postID, userID).Scan(&exists)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `DELETE FROM community_likes WHERE id_post = ? AND id_user = ?`, postID, userID); err != nil {
			return false, 0, err
		}
		if likes > 0 {
			likes--
		}
		if _, err := tx.ExecContext(ctx, `UPDATE community_posts SET likes_count = ? WHERE id = ?`, likes, postID); err != nil {
			return false, 0, err
		}
		return false, likes, nil
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `INSERT INTO community_likes (id_post, id_user) VALUES (?, ?)`, postID, userID); err != nil {
			return false, 0, err
		}
		likes++
		if _, err := tx.ExecContext(ctx, `UPDATE community_posts SET likes_count = ? WHERE id = ?`, likes, postID); err != nil {
			return false, 0, err
		}
		return true, likes, nil
	default:
		return false, 0, err
	}
}
