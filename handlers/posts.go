package handlers

import (
	"errors"
	"net/http"

	"github.com/classfeed/classfeed/go-services/internal/posts/service"
	"github.com/classfeed/classfeed/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

// PostHandler exposes the feed CRUD surface.
type PostHandler struct {
	svc *service.Service
}

func NewPostHandler(svc *service.Service) *PostHandler {
	return &PostHandler{svc: svc}
}

// Register routes under /posts
func (h *PostHandler) Register(rg *gin.RouterGroup) {
	p := rg.Group("/posts")
	p.GET("", h.List)
	p.GET("/:id", h.Get)
	p.POST("", h.Create)
	p.PATCH("/:id", h.Update)
	p.DELETE("/:id", h.Delete)
}

// List returns all posts, newest first.
func (h *PostHandler) List(c *gin.Context) {
	ps, err := h.svc.List(c.Request.Context())
	if err != nil {
		logger.Errorf("list posts failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}
	c.JSON(http.StatusOK, ps)
}

func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load post"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create accepts multipart form data so the client can attach an image in the
// same request. The image is stored before the post document is written.
func (h *PostHandler) Create(c *gin.Context) {
	sess := sessionFromClaims(c)

	var draft service.Draft
	draft.Title = c.PostForm("title")
	draft.Subtitle = c.PostForm("subtitle")
	draft.Content = c.PostForm("content")
	if draft.Title == "" || draft.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}

	img, closer, err := imageFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
		return
	}
	if closer != nil {
		defer closer()
	}

	p, err := h.svc.Create(c.Request.Context(), sess, draft, img)
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to create posts"})
			return
		}
		logger.Errorf("create post failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PostHandler) Update(c *gin.Context) {
	sess := sessionFromClaims(c)

	var upd service.Update
	if v, ok := c.GetPostForm("title"); ok {
		upd.Title = &v
	}
	if v, ok := c.GetPostForm("subtitle"); ok {
		upd.Subtitle = &v
	}
	if v, ok := c.GetPostForm("content"); ok {
		upd.Content = &v
	}
	img, closer, err := imageFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
		return
	}
	if closer != nil {
		defer closer()
	}

	p, err := h.svc.Edit(c.Request.Context(), sess, c.Param("id"), upd, img)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		case errors.Is(err, service.ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to edit this post"})
		default:
			logger.Errorf("update post failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update post"})
		}
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) Delete(c *gin.Context) {
	sess := sessionFromClaims(c)

	if err := h.svc.Delete(c.Request.Context(), sess, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		case errors.Is(err, service.ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to delete this post"})
		default:
			logger.Errorf("delete post failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete post"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// imageFromForm opens the optional "image" multipart part. Returns a nil image
// when the client did not attach one; the caller must invoke the returned
// closer after the upload completes.
func imageFromForm(c *gin.Context) (*service.Image, func(), error) {
	fh, err := c.FormFile("image")
	if err != nil {
		// a missing part (or no multipart body at all) means no image
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	img := &service.Image{Reader: f, Size: fh.Size, ContentType: ct}
	return img, func() { f.Close() }, nil
}
