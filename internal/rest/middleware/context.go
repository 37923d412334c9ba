package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/surveyloop/surveyloop/internal/types"
)

// RequestContextMiddleware propagates the request id into the request
// context, minting one when the caller did not send any.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(types.HeaderRequestID)
		if requestID == "" {
			requestID = types.GenerateUUID()
		}

		ctx := types.SetRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(types.HeaderRequestID, requestID)

		c.Next()
	}
}
