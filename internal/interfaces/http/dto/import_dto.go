package dto

import csvimport "github.com/sanable/backend/internal/infrastructure/import"

// StudentImportRequest carries the options for a CSV import upload.
type StudentImportRequest struct {
	ConflictMode string `form:"conflict_mode" binding:"omitempty,oneof=skip fail"`
}

// StudentImportResponse represents the result of a student bulk import
type StudentImportResponse struct {
	TotalRows    int                  `json:"total_rows" example:"100"`
	ImportedRows int                  `json:"imported_rows" example:"95"`
	SkippedRows  int                  `json:"skipped_rows" example:"2"`
	ErrorRows    int                  `json:"error_rows" example:"3"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty" example:"false"`
	TotalErrors  int                  `json:"total_errors,omitempty" example:"0"`
}

// ImportHistoryEntry summarizes a past import session for the history listing.
type ImportHistoryEntry struct {
	SessionID string `json:"session_id"`
	FileName  string `json:"file_name"`
	FileSize  int64  `json:"file_size"`
	State     string `json:"state"`
	TotalRows int    `json:"total_rows"`
	ValidRows int    `json:"valid_rows"`
	ErrorRows int    `json:"error_rows"`
	CreatedAt string `json:"created_at"`
}
