package handlers

import (
	"net/http"
	"testing"

	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/stretchr/testify/require"
)

func instructorProfile(id, name, email string) *models.UserProfile {
	return &models.UserProfile{ID: id, Name: name, Email: email, Role: models.RoleInstructor}
}

func studentProfile(id, name string) *models.UserProfile {
	return &models.UserProfile{ID: id, Name: name, Role: models.RoleStudent}
}

func TestCreatePostRequiresInstructor(t *testing.T) {
	env := newTestEnv(t)
	studentTok := env.tokenFor(t, studentProfile("s1", "Sam Student"))

	w := env.doForm(t, http.MethodPost, "/api/posts", studentTok, map[string]string{
		"title": "T", "content": "C",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	// and no token at all is rejected by the auth middleware
	w = env.doForm(t, http.MethodPost, "/api/posts", "", map[string]string{
		"title": "T", "content": "C",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndFetchPost(t *testing.T) {
	env := newTestEnv(t)
	tok := env.tokenFor(t, instructorProfile("i1", "Prof Jane", "jane@example.com"))

	w := env.doForm(t, http.MethodPost, "/api/posts", tok, map[string]string{
		"title": "Lecture 1", "subtitle": "Intro", "content": "Welcome",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := parseBody(t, w)
	require.Equal(t, "Prof Jane", created["author"])
	id := created["id"].(string)

	w = env.doJSON(t, http.MethodGet, "/api/posts/"+id, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := parseBody(t, w)
	require.Equal(t, "Lecture 1", got["title"])

	w = env.doJSON(t, http.MethodGet, "/api/posts", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(t, http.MethodGet, "/api/posts/nope", tok, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	tok := env.tokenFor(t, instructorProfile("i1", "Prof Jane", "jane@example.com"))

	w := env.doForm(t, http.MethodPost, "/api/posts", tok, map[string]string{
		"subtitle": "no title or content",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditPostOnlyByAuthor(t *testing.T) {
	env := newTestEnv(t)
	author := env.tokenFor(t, instructorProfile("i1", "Prof Jane", "jane@example.com"))
	other := env.tokenFor(t, instructorProfile("i2", "Prof John", "john@example.com"))

	w := env.doForm(t, http.MethodPost, "/api/posts", author, map[string]string{
		"title": "Orig", "content": "C",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := parseBody(t, w)["id"].(string)

	// another instructor is not the author
	w = env.doForm(t, http.MethodPatch, "/api/posts/"+id, other, map[string]string{"title": "Hijacked"})
	require.Equal(t, http.StatusForbidden, w.Code)

	// the author may edit, and untouched fields survive
	w = env.doForm(t, http.MethodPatch, "/api/posts/"+id, author, map[string]string{"title": "Edited"})
	require.Equal(t, http.StatusOK, w.Code)
	got := parseBody(t, w)
	require.Equal(t, "Edited", got["title"])
	require.Equal(t, "C", got["content"])
}

func TestDeletePostOnlyByAuthor(t *testing.T) {
	env := newTestEnv(t)
	author := env.tokenFor(t, instructorProfile("i1", "Prof Jane", "jane@example.com"))
	stranger := env.tokenFor(t, studentProfile("s1", "Sam Student"))

	w := env.doForm(t, http.MethodPost, "/api/posts", author, map[string]string{
		"title": "T", "content": "C",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := parseBody(t, w)["id"].(string)

	w = env.doJSON(t, http.MethodDelete, "/api/posts/"+id, stranger, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.doJSON(t, http.MethodDelete, "/api/posts/"+id, author, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(t, http.MethodGet, "/api/posts/"+id, author, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
