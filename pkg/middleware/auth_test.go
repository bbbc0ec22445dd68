package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier implements Verifier; the token string doubles as the role claim
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	switch raw {
	case "goodtoken":
		return &fakeToken{data: map[string]interface{}{"uid": "user1", "email": "test@example.com"}}, nil
	case "instructor-token":
		return &fakeToken{data: map[string]interface{}{"uid": "user2", "role": "instructor"}}, nil
	case "student-token":
		return &fakeToken{data: map[string]interface{}{"uid": "user3", "role": "student"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "BadHeader")
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		claims, ok := c.Get("claims")
		require.True(t, ok)
		resp, _ := json.Marshal(gin.H{"claims": claims})
		c.Writer.Write(resp)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Contains(t, got, "claims")
}

func TestClaimsRoleFailsClosed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// no claims at all
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	require.Equal(t, models.RoleUnknown, ClaimsRole(c))

	// claims with an unrecognized role value
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Set("claims", map[string]interface{}{"role": "superuser"})
	require.Equal(t, models.RoleUnknown, ClaimsRole(c))

	// claims with a non-string role
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Set("claims", map[string]interface{}{"role": 42})
	require.Equal(t, models.RoleUnknown, ClaimsRole(c))

	// valid role passes through
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Set("claims", map[string]interface{}{"role": "admin"})
	require.Equal(t, models.RoleAdmin, ClaimsRole(c))
}

func TestRequireRole(t *testing.T) {
	g := gin.New()
	g.GET("/protected", AuthMiddleware(&fakeVerifier{}), RequireRole(models.RoleInstructor), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		token string
		want  int
	}{
		{"instructor-token", http.StatusOK},
		{"student-token", http.StatusForbidden},
		{"goodtoken", http.StatusForbidden}, // no role claim at all
	}
	for _, cse := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+cse.token)
		rw := httptest.NewRecorder()
		g.ServeHTTP(rw, req)
		require.Equal(t, cse.want, rw.Code, "token %s", cse.token)
	}
}
