package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	importapp "github.com/sanable/backend/internal/application/import"
	"github.com/sanable/backend/internal/infrastructure/config"
	"github.com/sanable/backend/internal/interfaces/http/dto"
)

// ImportHandler handles student CSV import operations
type ImportHandler struct {
	BaseHandler
	importService *importapp.StudentImportService
	maxFileSize   int64
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *importapp.StudentImportService, cfg config.ImportConfig) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		maxFileSize:   cfg.MaxFileSize,
	}
}

// ImportStudents godoc
//
//	@Summary		Import students from a CSV file
//	@Description	Validates and imports a student CSV file in one pass. Rows
//	@Description	that fail validation are reported without blocking the rest.
//	@Tags			import
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file			formData	file	true	"CSV file to import"
//	@Param			conflict_mode	formData	string	false	"skip or fail on duplicate identity numbers"
//	@Success		200	{object}	dto.Response{data=dto.StudentImportResponse}
//	@Failure		400	{object}	dto.Response{error=dto.ErrorInfo}
//	@Failure		413	{object}	dto.Response{error=dto.ErrorInfo}
//	@Failure		415	{object}	dto.Response{error=dto.ErrorInfo}
//	@Security		BearerAuth
//	@Router			/import-students [post]
func (h *ImportHandler) ImportStudents(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation,
			fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxFileSize))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && contentType != "text/csv" && contentType != "application/octet-stream" &&
		contentType != "text/plain" && contentType != "application/vnd.ms-excel" {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
		return
	}

	conflictMode := importapp.ConflictMode(c.PostForm("conflict_mode"))
	if conflictMode == "" {
		conflictMode = importapp.ConflictModeFail
	}
	if !conflictMode.IsValid() {
		h.BadRequest(c, "Invalid conflict_mode, must be one of: skip, fail")
		return
	}

	result, err := h.importService.ImportFile(
		c.Request.Context(),
		userID,
		header.Filename,
		header.Size,
		file,
		conflictMode,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.StudentImportResponse{
		TotalRows:    result.TotalRows,
		ImportedRows: result.ImportedRows,
		SkippedRows:  result.SkippedRows,
		ErrorRows:    result.ErrorRows,
		Errors:       result.Errors,
		IsTruncated:  result.IsTruncated,
		TotalErrors:  result.TotalErrors,
	})
}

// ImportHistory godoc
//
//	@Summary		List recent imports
//	@Description	Lists the current user's recent import sessions
//	@Tags			import
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum entries to return"
//	@Success		200	{object}	dto.Response{data=[]dto.ImportHistoryEntry}
//	@Security		BearerAuth
//	@Router			/import-students/history [get]
func (h *ImportHandler) ImportHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	sessions, err := h.importService.History(userID, limit)
	if err != nil {
		h.InternalError(c, "failed to list import history")
		return
	}

	entries := make([]dto.ImportHistoryEntry, 0, len(sessions))
	for _, s := range sessions {
		entries = append(entries, dto.ImportHistoryEntry{
			SessionID: s.ID.String(),
			FileName:  s.FileName,
			FileSize:  s.FileSize,
			State:     string(s.State),
			TotalRows: s.TotalRows,
			ValidRows: s.ValidRows,
			ErrorRows: s.ErrorRows,
			CreatedAt: s.CreatedAt.Format(time.RFC3339),
		})
	}

	h.Success(c, entries)
}

// RegisterRoutes registers student import routes
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import-students", h.ImportStudents)
	rg.GET("/import-students/history", h.ImportHistory)
}
