package core

import "github.com/gin-gonic/gin"

// respondError sends the failed Result together with the unified error payload
// {"ok": false, "message", "error": {"code", "message"}}.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"ok":      false,
		"message": message,
		"error":   gin.H{"code": code, "message": message},
	})
}
