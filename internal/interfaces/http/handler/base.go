package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/interfaces/http/dto"
	"github.com/sanable/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides the response helpers shared by all handlers. Error
// responses carry the request ID so support can correlate client reports
// with log lines.
type BaseHandler struct{}

// requestID reads the ID the RequestID middleware stored, falling back to
// the header for requests that bypass the middleware (direct test calls).
func requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getUserID extracts the authenticated user's ID from the JWT claims.
func getUserID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetJWTUserID(c)
	if raw == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(raw)
}

// Success sends a 200 with the given payload.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 with payload and pagination meta.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 with the created resource.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a bare 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with an explicit status code.
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID(c)))
}

// BadRequest sends a 400 with ERR_BAD_REQUEST.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 with ERR_UNAUTHORIZED.
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 with ERR_INTERNAL.
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindError reports a failed request bind. Field-level validation
// failures come back with per-field details, anything else (malformed
// JSON, wrong types) as a plain bad request.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); len(details) > 0 {
		h.ValidationError(c, details)
		return
	}
	h.BadRequest(c, "Invalid request body")
}

// ValidationError sends a 400 carrying per-field failure details.
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID(c),
		details,
	))
}

// HandleError maps an error from the application layer onto the wire.
// Domain errors, wrapped or not, answer with their mapped status and
// normalized code; anything else is reported as an internal error without
// leaking its message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(
			code, domainErr.Message, requestID(c),
		))
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
