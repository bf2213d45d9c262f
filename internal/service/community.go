package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
)

const (
	notifyTimeout  = 3 * time.Second
	snippetRunes   = 80
	anonymousActor = "Seseorang"
)

// CommunityService covers the parts of the forum that touch more than one
// row: comments with their counters and owner notification, and likes.
type CommunityService struct {
	posts    *repository.CommunityRepo
	users    *repository.UserRepo
	notifier Notifier
	logger   *zap.Logger
}

func NewCommunityService(posts *repository.CommunityRepo, users *repository.UserRepo, notifier Notifier, logger *zap.Logger) *CommunityService {
	return &CommunityService{posts: posts, users: users, notifier: notifier, logger: logger}
}

// ViewPost bumps the view counter and returns the post.
func (s *CommunityService) ViewPost(ctx context.Context, id uint64) (*model.Post, error) {
	if err := s.posts.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	return s.posts.GetPost(ctx, id)
}

// AddComment stores a comment and bumps the post's reply counter in one
// transaction. The post owner is then notified on a best-effort basis:
// failures there are logged and never affect the result.
func (s *CommunityService) AddComment(ctx context.Context, userID, postID uint64, content string, parentID *uint64) (*model.Comment, error) {
	tx, err := s.posts.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := s.posts.LockPostTx(ctx, tx, postID); err != nil {
		return nil, err
	}
	if parentID != nil {
		parentPost, isReply, err := s.posts.CommentParentPost(ctx, tx, *parentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidParentComment
			}
			return nil, err
		}
		if parentPost != postID || isReply {
			return nil, ErrInvalidParentComment
		}
	}

	c := &model.Comment{PostID: postID, UserID: userID, ParentID: parentID, Content: content, CreatedAt: time.Now().UTC()}
	if err := s.posts.CreateCommentTx(ctx, tx, c); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.notifyPostOwner(ctx, c)
	return c, nil
}

func (s *CommunityService) notifyPostOwner(ctx context.Context, c *model.Comment) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	log := s.logger.With(zap.Uint64("post_id", c.PostID), zap.Uint64("comment_id", c.ID))
	owner, err := s.posts.PostOwner(ctx, s.posts.DB(), c.PostID)
	if err != nil {
		log.Warn("comment notification: owner lookup failed", zap.Error(err))
		return
	}
	if owner == c.UserID {
		return
	}

	actor := anonymousActor
	if u, err := s.users.GetByID(ctx, c.UserID); err == nil && u.Name != "" {
		actor = u.Name
		c.AuthorName = u.Name
	}
	ref := c.PostID
	n := &model.Notification{
		UserID: owner,
		Title:  "Komentar baru di postingan Anda",
		Body:   fmt.Sprintf("%s: %s", actor, snippet(c.Content)),
		Type:   model.NotifyCommunity,
		RefID:  &ref,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Warn("comment notification: enqueue failed", zap.Uint64("owner_id", owner), zap.Error(err))
	}
}

func snippet(s string) string {
	if utf8.RuneCountInString(s) <= snippetRunes {
		return s
	}
	r := []rune(s)
	return string(r[:snippetRunes]) + "…"
}

// Comments returns the post's top-level comments with their replies nested.
func (s *CommunityService) Comments(ctx context.Context, postID uint64) ([]model.Comment, error) {
	if _, err := s.posts.PostOwner(ctx, s.posts.DB(), postID); err != nil {
		return nil, err
	}
	flat, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	return NestComments(flat), nil
}

// NestComments groups replies under their parent, keeping input order. A
// reply whose parent is missing is promoted to the top level.
func NestComments(flat []model.Comment) []model.Comment {
	index := make(map[uint64]int, len(flat))
	top := make([]model.Comment, 0, len(flat))
	for _, c := range flat {
		if c.ParentID == nil {
			index[c.ID] = len(top)
			top = append(top, c)
		}
	}
	for _, c := range flat {
		if c.ParentID == nil {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			top[i].Replies = append(top[i].Replies, c)
			continue
		}
		top = append(top, c)
	}
	return top
}

// ToggleLike likes the post for the user, or unlikes it when already liked.
func (s *CommunityService) ToggleLike(ctx context.Context, postID, userID uint64) (bool, int, error) {
	tx, err := s.posts.DB().BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	likes, err := s.posts.LockPostTx(ctx, tx, postID)
	if err != nil {
		return false, 0, err
	}
	liked, count, err := s.posts.ToggleLikeTx(ctx, tx, postID, userID, likes)
	if err != nil {
		return false, 0, err
	}
	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	committed = true
	return liked, count, nil
}
