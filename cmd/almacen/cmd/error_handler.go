package cmd

import (
	"errors"
	"fmt"
	"os"

	apperrors "dolce-almacen/pkg/errors"
	"dolce-almacen/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints a user-friendly message for err and returns the
// process exit code to use.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if importErr, ok := apperrors.AsImportError(err); ok {
		return h.handleImportError(importErr)
	}

	return h.handleGenericError(err)
}

// handleImportError handles ImportError with detailed context
func (h *CLIErrorHandler) handleImportError(err *apperrors.ImportError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	if help := h.getCategoryHelp(err.Category); help != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", help)
	}

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-ImportError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if errors.Is(err, os.ErrPermission) {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if !h.verbose {
		fmt.Fprintf(os.Stderr, "Run with --verbose for more details\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category apperrors.ErrorCategory) string {
	switch category {
	case apperrors.CategoryFile:
		return `File error help:
• Check that the source folder contains inventario.xlsx, entradas.xlsx, salidas.xlsx and mermas.xlsx
• Verify the path is correct (use absolute paths if needed)
• Ensure you have read access to the files`

	case apperrors.CategoryWorkbook:
		return `Workbook error help:
• Re-export the document from the warehouse spreadsheet
• Do not rename sheets or reorder columns; the layouts are fixed per document
• Open the file in a spreadsheet program to confirm it is not corrupted`

	case apperrors.CategoryConfig:
		return `Configuration error help:
• Check the flag value, config file entry or ALMACEN_* environment variable
• Run 'almacen import --help' to see valid values and defaults`

	case apperrors.CategoryCatalog:
		return `Catalog error help:
• Check that the database path is writable and not on a full disk
• If another import is running, wait for it to finish and retry
• No partial changes are applied; a failed run can always be retried`

	case apperrors.CategoryImport:
		return `Import error help:
• Seed the catalog first ('almacen catalog seed') or pass --create-missing-items
• Use --dry-run to preview what a run would do
• Export the pending report (--pending-file) to triage unmatched names`

	default:
		return ""
	}
}
