package core

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminOnly ensures the session user is an admin in the user store. The
// stored record decides; the session copy is not trusted for the role.
func AdminOnly(users UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := requireLogin(c)
		if !ok {
			c.Abort()
			return
		}
		rec, err := users.FindByEmail(c.Request.Context(), user.Email)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to load user")
			c.Abort()
			return
		}
		if rec == nil || rec.ID != user.ID || !rec.Admin {
			respondError(c, http.StatusForbidden, "FORBIDDEN", "Se requieren permisos de administrador")
			c.Abort()
			return
		}
		c.Next()
	}
}
