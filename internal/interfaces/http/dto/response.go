package dto

import "time"

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo carries the failure details of an unsuccessful response.
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Details   []ValidationDetail `json:"details,omitempty"`
	Help      string             `json:"help,omitempty"`
}

// ValidationDetail describes a single field validation failure.
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta is the pagination block of list responses.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// errorInfo builds the shared part of every error payload. The code is
// normalized to the wire convention here so callers may pass domain codes.
func errorInfo(code, message, requestID string) *ErrorInfo {
	return &ErrorInfo{
		Code:      NormalizeErrorCode(code),
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
	}
}

// NewSuccessResponse wraps data in a success envelope.
func NewSuccessResponse(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta wraps a page of data with pagination meta.
// A non-positive pageSize falls back to 20.
func NewSuccessResponseWithMeta(data interface{}, total int64, page, pageSize int) Response {
	if pageSize <= 0 {
		pageSize = 20
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
}

// NewErrorResponse builds an error envelope from a code and message.
func NewErrorResponse(code, message string) Response {
	return Response{Success: false, Error: errorInfo(code, message, "")}
}

// NewErrorResponseWithRequestID additionally carries the request id so
// clients can quote it when reporting problems.
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{Success: false, Error: errorInfo(code, message, requestID)}
}

// NewValidationErrorResponse builds an error envelope with per-field details.
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	info := errorInfo(ErrCodeValidation, message, requestID)
	info.Details = details
	return Response{Success: false, Error: info}
}

// NewErrorResponseWithHelp builds an error envelope pointing at docs.
func NewErrorResponseWithHelp(code, message, requestID, help string) Response {
	info := errorInfo(code, message, requestID)
	info.Help = help
	return Response{Success: false, Error: info}
}

// ListRequest binds the common query parameters of list endpoints.
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PerPage  int    `form:"per_page" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
}
