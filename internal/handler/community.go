package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
	"github.com/strikeit/strikeit-api/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CommunityHandler serves the forum under /community.
type CommunityHandler struct {
	Service *service.CommunityService
	Repo    *repository.CommunityRepo
}

func NewCommunityHandler(svc *service.CommunityService, repo *repository.CommunityRepo) *CommunityHandler {
	return &CommunityHandler{Service: svc, Repo: repo}
}

func pagination(c echo.Context) (limit, offset int) {
	limit = defaultPageSize
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		limit = min(n, maxPageSize)
	}
	page := 1
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		page = n
	}
	return limit, (page - 1) * limit
}

// ListPosts handles GET /community/posts?page=&limit=.
func (h *CommunityHandler) ListPosts(c echo.Context) error {
	limit, offset := pagination(c)
	posts, err := h.Repo.ListPosts(c.Request().Context(), limit, offset)
	if err != nil {
		return respondError(c, err, "failed to load posts")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": posts, "limit": limit, "offset": offset})
}

// GetPost handles GET /community/posts/:id; every fetch counts as a view.
func (h *CommunityHandler) GetPost(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}
	p, err := h.Service.ViewPost(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to load post")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

// CreatePost handles POST /community/posts.
func (h *CommunityHandler) CreatePost(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Title    string  `json:"title" validate:"required,max=200"`
		Content  string  `json:"content" validate:"required"`
		ImageURL *string `json:"image_url" validate:"omitempty,url"`
	}
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	p := &model.Post{UserID: userID, Title: body.Title, Content: body.Content, ImageURL: body.ImageURL}
	if err := h.Repo.CreatePost(c.Request().Context(), p); err != nil {
		return respondError(c, err, "failed to create post")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "post created", "data": p})
}

// ListComments handles GET /community/posts/:id/comments; replies are nested.
func (h *CommunityHandler) ListComments(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}
	comments, err := h.Service.Comments(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "failed to load comments")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": comments})
}

// CreateComment handles POST /community/posts/:id/comments. The post owner
// is notified unless they wrote the comment themselves.
func (h *CommunityHandler) CreateComment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}
	var body struct {
		Content  string  `json:"content" validate:"required"`
		ParentID *uint64 `json:"parent_id" validate:"omitempty,gt=0"`
	}
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	cm, err := h.Service.AddComment(c.Request().Context(), userID, id, body.Content, body.ParentID)
	if err != nil {
		return respondError(c, err, "failed to add comment")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "comment added", "data": cm})
}

// ToggleLike handles POST /community/posts/:id/like.
func (h *CommunityHandler) ToggleLike(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}
	liked, count, err := h.Service.ToggleLike(c.Request().Context(), id, userID)
	if err != nil {
		return respondError(c, err, "failed to toggle like")
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": liked, "likes_count": count})
}
