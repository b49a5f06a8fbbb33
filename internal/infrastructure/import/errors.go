package csvimport

import (
	"errors"
	"fmt"
)

// Machine-readable codes carried on each RowError so the frontend can
// highlight the offending cell.
const (
	ErrCodeImportCSVParsing        = "ERR_IMPORT_CSV_PARSING"
	ErrCodeImportValidation        = "ERR_IMPORT_VALIDATION"
	ErrCodeImportRequiredField     = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType       = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidLength     = "ERR_IMPORT_INVALID_LENGTH"
	ErrCodeImportInvalidRange      = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeImportDuplicateInFile   = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeImportDuplicateInDB     = "ERR_IMPORT_DUPLICATE_IN_DB"
	ErrCodeImportReferenceNotFound = "ERR_IMPORT_REFERENCE_NOT_FOUND"
)

// File-level failures that abort the upload before row validation.
var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
)

// RowError pins a validation failure to a row and column of the
// uploaded file.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError builds a RowError without echoing the cell value.
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// NewRowErrorWithValue builds a RowError that echoes the rejected
// value back to the uploader.
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message, Value: value}
}

// ErrorCollection accumulates row errors up to a cap. Everything past
// the cap is counted but not stored, so one broken thousand-row file
// cannot balloon the response.
type ErrorCollection struct {
	errs  []RowError
	limit int
	total int
}

// NewErrorCollection builds a collection storing at most max errors.
func NewErrorCollection(max int) *ErrorCollection {
	if max <= 0 {
		max = 100
	}
	return &ErrorCollection{errs: make([]RowError, 0, max), limit: max}
}

// Add records an error, storing it only while under the cap.
func (ec *ErrorCollection) Add(err RowError) {
	ec.total++
	if len(ec.errs) < ec.limit {
		ec.errs = append(ec.errs, err)
	}
}

func (ec *ErrorCollection) addRequired(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeImportRequiredField,
		fmt.Sprintf("field '%s' is required", column)))
}

func (ec *ErrorCollection) addType(row int, column, wantType, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportInvalidType,
		"expected "+wantType, value))
}

func (ec *ErrorCollection) addLength(row int, column string, minLen, maxLen int) {
	var msg string
	switch {
	case minLen > 0 && maxLen > 0:
		msg = fmt.Sprintf("length must be between %d and %d", minLen, maxLen)
	case maxLen > 0:
		msg = fmt.Sprintf("length must be at most %d", maxLen)
	default:
		msg = fmt.Sprintf("length must be at least %d", minLen)
	}
	ec.Add(NewRowError(row, column, ErrCodeImportInvalidLength, msg))
}

func (ec *ErrorCollection) addRange(row int, column, value, reason string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportInvalidRange, reason, value))
}

func (ec *ErrorCollection) addDuplicateInDB(row int, column, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportDuplicateInDB,
		fmt.Sprintf("value '%s' already exists", value), value))
}

func (ec *ErrorCollection) addReference(row int, column, value, refType string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportReferenceNotFound,
		fmt.Sprintf("%s '%s' not found", refType, value), value))
}

// Errors returns the stored errors.
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errs
}

// TotalCount is the number of errors seen, stored or not.
func (ec *ErrorCollection) TotalCount() int {
	return ec.total
}

// HasErrors reports whether any error was recorded.
func (ec *ErrorCollection) HasErrors() bool {
	return ec.total > 0
}

// IsTruncated reports whether errors past the cap were dropped.
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.total > ec.limit
}

// ValidationResult is the outcome of checking an uploaded file. Rows
// holds the rows that passed and is never serialized, it feeds the
// subsequent import step.
type ValidationResult struct {
	TotalRows   int              `json:"total_rows"`
	ValidRows   int              `json:"valid_rows"`
	ErrorRows   int              `json:"error_rows"`
	Errors      []RowError       `json:"errors,omitempty"`
	Preview     []map[string]any `json:"preview,omitempty"`
	IsTruncated bool             `json:"is_truncated,omitempty"`
	TotalErrors int              `json:"total_errors,omitempty"`
	Rows        []*Row           `json:"-"`
}

// IsValid reports whether every row passed validation.
func (vr *ValidationResult) IsValid() bool {
	return vr.ErrorRows == 0
}
