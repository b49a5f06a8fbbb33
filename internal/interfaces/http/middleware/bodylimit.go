package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanable/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects request bodies over maxBytes. Oversized uploads
// announced by Content-Length are refused up front; chunked uploads
// are cut off mid-read by http.MaxBytesReader.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("REQUEST_TOO_LARGE", "Request body exceeds maximum allowed size"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
