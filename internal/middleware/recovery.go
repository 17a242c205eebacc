// Package middleware provides the HTTP middleware stack.
package middleware

import (
	"github.com/gin-gonic/gin"
)

// Recovery converts panics into a 500 response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		c.JSON(500, gin.H{
			"code":    500,
			"message": "internal server error",
		})
		c.Abort()
	})
}
