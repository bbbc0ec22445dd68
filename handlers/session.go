package handlers

import (
	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/classfeed/classfeed/go-services/internal/session"
	"github.com/gin-gonic/gin"
)

// sessionFromClaims rebuilds the acting session from verified access-token
// claims. The role was resolved at token issue time, so the session arrives
// RoleResolved; a token without a role claim yields RoleUnknown and therefore
// minimal privileges. Requests without claims map to the logged-out session
// (fail closed).
func sessionFromClaims(c *gin.Context) session.Session {
	v, ok := c.Get("claims")
	if !ok {
		return session.LoggedOut()
	}
	cm, ok := v.(map[string]interface{})
	if !ok {
		return session.LoggedOut()
	}
	uid, _ := cm["uid"].(string)
	if uid == "" {
		return session.LoggedOut()
	}
	name, _ := cm["name"].(string)
	email, _ := cm["email"].(string)
	roleStr, _ := cm["role"].(string)
	role := models.Role(roleStr)
	if !role.Valid() {
		role = models.RoleUnknown
	}
	return session.Session{
		Authenticated: true,
		Identity:      &models.Identity{ID: uid, DisplayName: name, Email: email},
		Role:          role,
		RoleState:     session.RoleResolved,
	}
}
