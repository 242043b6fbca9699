package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/mailmerge/internal/application"
	"github.com/oksasatya/mailmerge/pkg/helpers"
	"github.com/oksasatya/mailmerge/pkg/response"
)

// Context keys set by Auth.
const (
	CtxOperatorID    = "operatorID"
	CtxOperatorName  = "operatorName"
	CtxOperatorEmail = "operatorEmail"
)

// Auth validates the access token and ensures its session is still the live one in Redis.
// It sets operatorID, operatorName, and operatorEmail in the Gin context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.Abort()
			return
		}

		// Retrieve session from Redis as a hash
		key := application.SessionKey(claims.OperatorID)
		data, err := rdb.HGetAll(c.Request.Context(), key).Result()
		if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			c.Abort()
			return
		}

		c.Set(CtxOperatorID, data["operator_id"])
		c.Set(CtxOperatorName, data["name"])
		c.Set(CtxOperatorEmail, data["email"])
		c.Next()
	}
}
