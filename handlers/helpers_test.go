package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/classfeed/classfeed/go-services/internal/config"
	"github.com/classfeed/classfeed/go-services/internal/identity"
	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/classfeed/classfeed/go-services/internal/posts/repository"
	postsvc "github.com/classfeed/classfeed/go-services/internal/posts/service"
	"github.com/classfeed/classfeed/go-services/internal/refresh"
	"github.com/classfeed/classfeed/go-services/internal/tokens"
	"github.com/classfeed/classfeed/go-services/internal/users"
	"github.com/classfeed/classfeed/go-services/pkg/middleware"
)

// testEnv wires the full HTTP surface against in-memory backends.
type testEnv struct {
	r        *gin.Engine
	cfg      *config.Config
	provider *identity.MemoryProvider
	users    *users.Service
	profiles *users.MemoryProfileRepository
	posts    *postsvc.Service
	refresh  *refresh.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.Secret = "handler-test-secret"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = time.Hour

	provider := identity.NewMemoryProvider()
	profiles := users.NewMemoryProfileRepository()
	userSvc := users.NewService(profiles)
	refreshSvc := refresh.NewService(refresh.NewMemoryRepository())
	postRepo := repository.NewMemoryRepo()
	postSvc := postsvc.NewService(postRepo, nil)

	r := gin.New()
	NewAuthHandler(cfg, provider, userSvc, refreshSvc).Register(r.Group("/"))

	verifier := tokens.NewHSVerifier(cfg.JWT.Secret)
	api := r.Group("/api", middleware.AuthMiddleware(verifier))
	NewPostHandler(postSvc).Register(api)
	NewUserHandler(userSvc).Register(api)
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(verifier))
	NewUserHandler(userSvc).RegisterMe(v1)

	return &testEnv{
		r:        r,
		cfg:      cfg,
		provider: provider,
		users:    userSvc,
		profiles: profiles,
		posts:    postSvc,
		refresh:  refreshSvc,
	}
}

// signUp registers an account through the HTTP surface and returns the parsed body.
func (e *testEnv) signUp(t *testing.T, name, email, password string) map[string]interface{} {
	t.Helper()
	w := e.doJSON(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": name, "email": email, "password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}
	return parseBody(t, w)
}

// tokenFor mints an access token for a profile seeded directly in the store.
func (e *testEnv) tokenFor(t *testing.T, p *models.UserProfile) string {
	t.Helper()
	ctx := context.Background()
	if got, _ := e.profiles.GetByID(ctx, p.ID); got == nil {
		if err := e.profiles.Create(ctx, p); err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}
	tok, err := tokens.GenerateAccessToken(e.cfg, p, e.cfg.JWT.AccessTokenTTL)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return tok
}

func (e *testEnv) doJSON(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doForm(t *testing.T, method, path, bearer string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("parse body %q: %v", w.Body.String(), err)
	}
	return out
}
