package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/classfeed/classfeed/go-services/internal/posts"
	"github.com/classfeed/classfeed/go-services/internal/posts/repository"
	"github.com/classfeed/classfeed/go-services/internal/session"
	"github.com/classfeed/classfeed/go-services/pkg/metrics"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied means the authorization check failed; the backing
	// store is never touched in that case.
	ErrPermissionDenied = errors.New("permission denied")
)

// Uploader is the slice of the blob store the post service depends on: put
// the object and hand back a fetchable URL.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// Draft carries the user-editable fields of a new post.
type Draft struct {
	Title    string
	Subtitle string
	Content  string
}

// Update carries a partial edit; nil fields are left unchanged.
type Update struct {
	Title    *string
	Subtitle *string
	Content  *string
}

// Image is an optional picture attached to a create or update.
type Image struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// Service implements post operations with the authorization decisions made
// before any store call: creation needs an instructor-or-above session,
// edit/delete need ownership of the specific post.
type Service struct {
	repo  repository.Repository
	blobs Uploader
}

func NewService(repo repository.Repository, blobs Uploader) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// Create stores a new post authored by the acting session. The author field
// is stamped from the identity's display name or email; an optional image is
// uploaded to the blob store first and its URL stored on the post.
func (s *Service) Create(ctx context.Context, sess session.Session, d Draft, img *Image) (*posts.Post, error) {
	if !sess.Authenticated || !sess.Role.AtLeast(models.RoleInstructor) {
		metrics.PermissionDenied.WithLabelValues("create").Inc()
		return nil, ErrPermissionDenied
	}
	imageURL, err := s.uploadImage(ctx, img)
	if err != nil {
		return nil, err
	}
	p := &posts.Post{
		ID:        uuid.NewString(),
		Title:     d.Title,
		Subtitle:  d.Subtitle,
		Content:   d.Content,
		Author:    sess.Identity.AuthorName(),
		CreatedAt: time.Now().UTC(),
		ImageURL:  imageURL,
	}
	if _, err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*posts.Post, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*posts.Post, error) {
	return s.repo.List(ctx)
}

// Edit applies a partial update after the ownership check passes.
func (s *Service) Edit(ctx context.Context, sess session.Session, id string, upd Update, img *Image) (*posts.Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !posts.CanMutate(p, sess.Identity) {
		metrics.PermissionDenied.WithLabelValues("edit").Inc()
		return nil, ErrPermissionDenied
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Subtitle != nil {
		p.Subtitle = *upd.Subtitle
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if img != nil {
		url, uerr := s.uploadImage(ctx, img)
		if uerr != nil {
			return nil, uerr
		}
		p.ImageURL = url
	}
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

// Delete removes the post after the ownership check passes.
func (s *Service) Delete(ctx context.Context, sess session.Session, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !posts.CanMutate(p, sess.Identity) {
		metrics.PermissionDenied.WithLabelValues("delete").Inc()
		return ErrPermissionDenied
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *Service) uploadImage(ctx context.Context, img *Image) (string, error) {
	if img == nil {
		return "", nil
	}
	if s.blobs == nil {
		return "", fmt.Errorf("no blob storage configured")
	}
	key := fmt.Sprintf("posts/%d-%s", time.Now().UnixNano(), uuid.NewString())
	url, err := s.blobs.Upload(ctx, key, img.Reader, img.Size, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}
