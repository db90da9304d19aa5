package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Govind-619/PaySphere/utils"
	"github.com/gin-gonic/gin"
)

// AdminAuth requires a bearer token signed with secret that carries the admin claim
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.LogInfo("AdminAuth called for %s", c.Request.URL.Path)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.LogError("Missing Authorization header")
			abort(c, http.StatusUnauthorized, utils.KindUnauthorized, utils.ErrUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.LogError("Authorization header is not a bearer token")
			abort(c, http.StatusUnauthorized, utils.KindUnauthorized, utils.ErrInvalidToken)
			return
		}

		claims, err := utils.ValidateAdminToken(secret, tokenString)
		if errors.Is(err, utils.ErrNotAdmin) {
			utils.LogError("Token without the admin claim used for %s", c.Request.URL.Path)
			abort(c, http.StatusForbidden, utils.KindForbidden, utils.ErrForbidden)
			return
		}
		if err != nil {
			utils.LogError("Invalid admin token: %v", err)
			abort(c, http.StatusUnauthorized, utils.KindUnauthorized, utils.ErrInvalidToken)
			return
		}

		c.Set("admin_email", claims.Email)
		utils.LogInfo("Admin %s authenticated successfully", claims.Email)
		c.Next()
	}
}

func abort(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, utils.StandardResponse{
		Status:  "error",
		Message: message,
		Data:    gin.H{"kind": kind},
	})
}
