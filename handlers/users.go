package handlers

import (
	"errors"
	"net/http"

	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/classfeed/classfeed/go-services/internal/routes"
	"github.com/classfeed/classfeed/go-services/internal/users"
	"github.com/classfeed/classfeed/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

// GrantRequest is the payload for promoting a user to instructor by email.
type GrantRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// UserHandler exposes profile and role-management endpoints.
type UserHandler struct {
	svc *users.Service
}

func NewUserHandler(svc *users.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register routes under /users
func (h *UserHandler) Register(rg *gin.RouterGroup) {
	u := rg.Group("/users")
	u.GET("", h.ListAll)
	u.GET("/instructors", h.ListInstructors)
	u.POST("/instructors", h.GrantInstructor)
	u.GET("/students", h.ListStudents)
}

// RegisterMe mounts the session introspection endpoint.
func (h *UserHandler) RegisterMe(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
}

// Me reports the caller's session as the client sees it: identity, resolved
// role and the set of screens that session may navigate to.
func (h *UserHandler) Me(c *gin.Context) {
	sess := sessionFromClaims(c)
	if !sess.Authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     sess.Identity.ID,
		"name":   sess.Identity.DisplayName,
		"email":  sess.Identity.Email,
		"role":   sess.Role,
		"routes": routes.Allowed(sess).Routes(),
	})
}

// ListInstructors returns every profile holding the instructor role.
func (h *UserHandler) ListInstructors(c *gin.Context) {
	ps, err := h.svc.ListByRole(c.Request.Context(), models.RoleInstructor)
	if err != nil {
		logger.Errorf("list instructors failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list instructors"})
		return
	}
	c.JSON(http.StatusOK, ps)
}

// ListStudents returns every profile holding the student role.
func (h *UserHandler) ListStudents(c *gin.Context) {
	ps, err := h.svc.ListByRole(c.Request.Context(), models.RoleStudent)
	if err != nil {
		logger.Errorf("list students failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list students"})
		return
	}
	c.JSON(http.StatusOK, ps)
}

// ListAll returns the full roster.
func (h *UserHandler) ListAll(c *gin.Context) {
	ps, err := h.svc.List(c.Request.Context())
	if err != nil {
		logger.Errorf("list users failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, ps)
}

// GrantInstructor promotes the profile matching the given email. Only an
// instructor-or-above session may grant the role.
func (h *UserHandler) GrantInstructor(c *gin.Context) {
	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := sessionFromClaims(c)
	p, err := h.svc.GrantInstructor(c.Request.Context(), sess, req.Email, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to grant roles"})
		case errors.Is(err, users.ErrNoSuchUser):
			c.JSON(http.StatusNotFound, gin.H{"error": "no user found with this email"})
		default:
			logger.Errorf("grant instructor failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to grant role"})
		}
		return
	}
	c.JSON(http.StatusOK, p)
}
