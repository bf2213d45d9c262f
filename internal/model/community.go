package model

import "time"

// Post is a community thread. The counters are denormalised and maintained
// by the view, comment and like endpoints.
type Post struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"id_user"`
	AuthorName string    `json:"author_name"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ImageURL   *string   `json:"image_url,omitempty"`
	ViewsCount int       `json:"views_count"`
	LikesCount int       `json:"likes_count"`
	ReplyCount int       `json:"reply_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Comment belongs to a post. ParentID, when set, points at a top-level
// comment of the same post; threads are one level deep.
type Comment struct {
	ID         uint64    `json:"id"`
	PostID     uint64    `json:"id_post"`
	UserID     uint64    `json:"id_user"`
	AuthorName string    `json:"author_name"`
	ParentID   *uint64   `json:"parent_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	Replies    []Comment `json:"replies,omitempty"`
}

// Review is a rating of a location by a user.
type Review struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"id_user"`
	AuthorName string    `json:"author_name"`
	LocationID uint64    `json:"id_location"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
