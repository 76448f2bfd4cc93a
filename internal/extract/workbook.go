// Package extract turns the four fixed-layout warehouse XLSX exports into
// normalized stock and movement rows.
//
// Each document kind has a contract with the external export format: a fixed
// number of header rows to skip and fixed column positions per field. The
// columns carry no programmatic labels; the positions below are the contract.
//
// Shared noise rules: rows with an empty name cell are dropped silently, and
// movement rows whose parsed quantity is zero or negative are dropped
// silently. Quantities and dates parse tolerantly (see parse.go); nothing in
// this package aborts a run over bad cell data. Only an unreadable or
// malformed workbook is a hard error.
package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"dolce-almacen/internal/models"
	apperrors "dolce-almacen/pkg/errors"
)

// DefaultFileName returns the expected file name for a source document
// inside the import folder.
func DefaultFileName(source models.Source) string {
	switch source {
	case models.SourceStock:
		return "inventario.xlsx"
	case models.SourceInbound:
		return "entradas.xlsx"
	case models.SourceOutbound:
		return "salidas.xlsx"
	case models.SourceShrinkage:
		return "mermas.xlsx"
	default:
		return ""
	}
}

// SourcePath resolves the document path for a source inside the import
// folder.
func SourcePath(folder string, source models.Source) string {
	return filepath.Join(folder, DefaultFileName(source))
}

// readSheet opens a workbook and returns every row of its first sheet.
func readSheet(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileError(apperrors.CodeFileNotFound, path, err)
		}
		return nil, apperrors.FileError(apperrors.CodeFilePermission, path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.WorkbookError(apperrors.CodeWorkbookCorrupted, path, "", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, apperrors.WorkbookError(apperrors.CodeSheetMissing, path, "", nil)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.WorkbookError(apperrors.CodeLayoutMismatch, path, sheet, err)
	}
	return rows, nil
}

// rowLocator builds the stable human-readable locator for a workbook row.
// It feeds both the pending report and the movement fingerprint, so it must
// not change across re-runs of the same file.
func rowLocator(excelRow int) string {
	return fmt.Sprintf("fila %d", excelRow)
}
