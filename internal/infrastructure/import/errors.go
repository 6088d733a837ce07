package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Import error codes
const (
	ErrCodeImportMissingHeader     = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeImportMalformedRow      = "ERR_IMPORT_MALFORMED_ROW"
	ErrCodeImportRequiredField     = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType       = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidFormat     = "ERR_IMPORT_INVALID_FORMAT"
	ErrCodeImportInvalidLength     = "ERR_IMPORT_INVALID_LENGTH"
	ErrCodeImportInvalidValue      = "ERR_IMPORT_INVALID_VALUE"
	ErrCodeImportDuplicateInFile   = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeImportReferenceNotFound = "ERR_IMPORT_REFERENCE_NOT_FOUND"
)

var (
	// ErrEmptyFile is returned when the CSV file is empty
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrInvalidEncoding is returned when the file is not UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the CSV file has no header row
	ErrMissingHeader = errors.New("CSV file missing header row")
)

// MissingColumnsError lists required headers absent from a tab
type MissingColumnsError struct {
	Sheet   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing columns %s", e.Sheet, strings.Join(e.Columns, ", "))
}

// RowError is a problem with a specific row and column
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ErrorCollection gathers row errors up to a limit while still counting the rest
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
	rows       map[int]struct{}
}

// NewErrorCollection creates a collection; non-positive limits default to 100
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{maxErrors: maxErrors, rows: make(map[int]struct{})}
}

// Add records an error
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	ec.rows[err.Row] = struct{}{}
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddReferenceError records a value that points at nothing
func (ec *ErrorCollection) AddReferenceError(row int, column, value, refType string) {
	ec.Add(RowError{
		Row:     row,
		Column:  column,
		Code:    ErrCodeImportReferenceNotFound,
		Message: fmt.Sprintf("%s '%s' not found", refType, value),
		Value:   value,
	})
}

// AddDuplicateError records a value repeated within the file
func (ec *ErrorCollection) AddDuplicateError(row int, column, value string) {
	ec.Add(RowError{
		Row:     row,
		Column:  column,
		Code:    ErrCodeImportDuplicateInFile,
		Message: fmt.Sprintf("duplicate value '%s' in file", value),
		Value:   value,
	})
}

// Errors returns the retained errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns how many errors were added, including dropped ones
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors reports whether any error was added
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// RowCount returns how many distinct rows have at least one error
func (ec *ErrorCollection) RowCount() int {
	return len(ec.rows)
}

// IsTruncated reports whether errors were dropped past the limit
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > len(ec.errors)
}
