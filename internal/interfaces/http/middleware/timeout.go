package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanable/backend/internal/interfaces/http/dto"
)

// Timeout attaches a deadline to the request context and answers 504 if the
// handler chain has not produced a response in time. The handler goroutine is
// always waited on so its context cancellation can unwind cleanly.
func Timeout(limit time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), limit)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		done := make(chan struct{})
		go func() {
			defer close(done)
			c.Next()
		}()

		select {
		case <-done:
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				c.AbortWithStatusJSON(http.StatusGatewayTimeout, dto.NewErrorResponse(
					dto.ErrCodeTimeout,
					"Request timed out",
				))
			}
			<-done
		}
	}
}
