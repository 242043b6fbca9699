package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID carries the request id in and out. Campaign logs and the
// response envelope use the same value, so an operator can quote it.
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware sets request_id in the Gin context, reusing an incoming
// X-Request-ID when it is a UUID, and echoes it back in the response header.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		if in, err := uuid.Parse(c.GetHeader(HeaderRequestID)); err == nil {
			id = in.String()
		}
		c.Set("request_id", id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
