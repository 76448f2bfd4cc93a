// Package errors defines the categorized error type used across the import
// engine. Errors carry a category (which maps to a process exit code), a
// machine-readable code, optional context values and an operator-facing
// suggestion.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile     ErrorCategory = "file"
	CategoryWorkbook ErrorCategory = "workbook"
	CategoryConfig   ErrorCategory = "configuration"
	CategoryCatalog  ErrorCategory = "catalog"
	CategoryImport   ErrorCategory = "import"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeDirectoryError ErrorCode = "directory_error"

	// Workbook errors
	CodeWorkbookCorrupted ErrorCode = "workbook_corrupted"
	CodeSheetMissing      ErrorCode = "sheet_missing"
	CodeLayoutMismatch    ErrorCode = "layout_mismatch"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Catalog errors
	CodeStoreOpenFailed ErrorCode = "store_open_failed"
	CodeQueryFailed     ErrorCode = "query_failed"
	CodeTxFailed        ErrorCode = "transaction_failed"
	CodeRunLocked       ErrorCode = "run_locked"

	// Import errors
	CodeRunAborted    ErrorCode = "run_aborted"
	CodeEmptyCatalog  ErrorCode = "empty_catalog"
	CodeAliasConflict ErrorCode = "alias_conflict"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ImportError is the base error type for all application errors
type ImportError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ImportError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ImportError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ImportError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryWorkbook:
		return 3
	case CategoryConfig:
		return 4
	case CategoryCatalog, CategoryImport, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ImportError) WithContext(key string, value interface{}) *ImportError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ImportError) WithSuggestion(suggestion string) *ImportError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ImportError
func New(category ErrorCategory, code ErrorCode, message string) *ImportError {
	return &ImportError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ImportError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ImportError {
	if err == nil {
		return nil
	}

	return &ImportError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// AsImportError extracts an *ImportError from an error chain, if present
func AsImportError(err error) (*ImportError, bool) {
	var importErr *ImportError
	if errors.As(err, &importErr) {
		return importErr, true
	}
	return nil, false
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ImportError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check that the source folder contains the four warehouse exports"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeDirectoryError:
		message = fmt.Sprintf("directory error: %s", path)
		suggestion = "ensure the directory exists and is accessible"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	return wrapOrNew(err, CategoryFile, code, message).
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// WorkbookError creates an error for an unreadable or malformed workbook
func WorkbookError(code ErrorCode, path, sheet string, err error) *ImportError {
	var message string
	var suggestion string

	switch code {
	case CodeWorkbookCorrupted:
		message = fmt.Sprintf("workbook cannot be opened: %s", path)
		suggestion = "re-export the document from the warehouse spreadsheet"
	case CodeSheetMissing:
		message = fmt.Sprintf("workbook %s has no sheet %q", path, sheet)
		suggestion = "the export must keep its original sheet layout"
	case CodeLayoutMismatch:
		message = fmt.Sprintf("workbook %s sheet %q does not match the expected column layout", path, sheet)
		suggestion = "column positions are fixed per document kind; do not reorder columns"
	default:
		message = fmt.Sprintf("workbook error: %s", path)
		suggestion = "check the workbook and try again"
	}

	return wrapOrNew(err, CategoryWorkbook, code, message).
		WithSuggestion(suggestion).
		WithContext("file_path", path).
		WithContext("sheet", sheet)
}

// ConfigError creates a configuration-related error
func ConfigError(code ErrorCode, setting string, value interface{}, err error) *ImportError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for %q: %v", setting, value)
		suggestion = "check the flag or config file value"
	case CodeMissingConfig:
		message = fmt.Sprintf("required configuration %q is missing", setting)
		suggestion = "provide the setting via flag, config file or environment"
	default:
		message = fmt.Sprintf("configuration error for %q", setting)
		suggestion = "check the configuration and try again"
	}

	return wrapOrNew(err, CategoryConfig, code, message).
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// CatalogError creates a store/persistence-related error
func CatalogError(code ErrorCode, operation string, err error) *ImportError {
	var message string
	var suggestion string

	switch code {
	case CodeStoreOpenFailed:
		message = "catalog store could not be opened"
		suggestion = "check the database path and that the file is not corrupted"
	case CodeQueryFailed:
		message = fmt.Sprintf("catalog query failed: %s", operation)
		suggestion = "inspect the underlying database error"
	case CodeTxFailed:
		message = fmt.Sprintf("catalog transaction failed: %s", operation)
		suggestion = "no partial changes were applied; re-run the import"
	case CodeRunLocked:
		message = "another import run holds the catalog lock"
		suggestion = "wait for the running import to finish and retry"
	default:
		message = fmt.Sprintf("catalog error: %s", operation)
		suggestion = "inspect the underlying database error"
	}

	return wrapOrNew(err, CategoryCatalog, code, message).
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ImportRunError creates an import-run level error
func ImportRunError(code ErrorCode, detail string, err error) *ImportError {
	message := fmt.Sprintf("import run failed: %s", detail)
	if code == CodeEmptyCatalog {
		message = "catalog is empty; nothing to match against"
	}
	return wrapOrNew(err, CategoryImport, code, message).
		WithContext("detail", detail)
}

// Internal creates an unexpected internal error
func Internal(detail string, err error) *ImportError {
	return wrapOrNew(err, CategoryInternal, CodeUnexpectedError,
		fmt.Sprintf("unexpected internal error: %s", detail))
}

func wrapOrNew(err error, category ErrorCategory, code ErrorCode, message string) *ImportError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}
