package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is where the middleware stashes the request id for
// buildMetadata to pick up.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware tags every request with an id, honoring one the
// client already sent so traces can span services. The id is echoed back
// in the X-Request-ID header and in the response metadata.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
