package extract

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dolce-almacen/internal/models"
	"dolce-almacen/pkg/logger"
)

// Shrinkage layout: the document reports a period, not per-row dates. Row 1
// holds the period label with the period-end date in the second column; row
// 2 holds the column headings; data starts at row 3.
const (
	shrinkageHeaderRows = 2

	shrinkagePeriodRow = 0
	shrinkagePeriodCol = 1

	shrinkageColName     = 0
	shrinkageColUnit     = 1
	shrinkageColQuantity = 2
	shrinkageColCause    = 3
)

// ShrinkageExtractor reads the loss/waste export (mermas.xlsx). All rows are
// stamped with the single period-end date shared by the whole document.
type ShrinkageExtractor struct {
	logger logger.Logger
	now    func() time.Time
}

// NewShrinkageExtractor creates the extractor for the shrinkage document
func NewShrinkageExtractor() *ShrinkageExtractor {
	return &ShrinkageExtractor{
		logger: logger.GetGlobalLogger().WithComponent("extract.shrinkage"),
		now:    time.Now,
	}
}

// Extract turns the shrinkage document into CONSUMO MovementRows.
func (e *ShrinkageExtractor) Extract(path string) ([]models.MovementRow, error) {
	rows, err := readSheet(path)
	if err != nil {
		return nil, err
	}

	periodEnd := e.now()
	if len(rows) > shrinkagePeriodRow {
		parsed, ok := ParseDate(cellAt(rows[shrinkagePeriodRow], shrinkagePeriodCol), periodEnd)
		if !ok {
			e.logger.WithField("file", path).
				Warn("shrinkage period-end cell unparseable; stamping rows with now")
		}
		periodEnd = parsed
	}

	var out []models.MovementRow
	for i, row := range rows {
		if i < shrinkageHeaderRows {
			continue
		}
		excelRow := i + 1

		name := cellAt(row, shrinkageColName)
		if name == "" {
			continue
		}

		qty, ok := ParseQuantity(cellAt(row, shrinkageColQuantity), decimal.Zero)
		if !ok || !qty.IsPositive() {
			continue
		}

		cause := cellAt(row, shrinkageColCause)
		locator := rowLocator(excelRow)

		out = append(out, models.MovementRow{
			Source:    models.SourceShrinkage,
			Locator:   locator,
			Kind:      models.MovementConsumo,
			Timestamp: periodEnd,
			RawName:   name,
			RawUnit:   cellAt(row, shrinkageColUnit),
			Quantity:  qty,
			Reference: fmt.Sprintf("%s|%s|%s", models.MovementConsumo, cause, locator),
		})
	}

	e.logger.WithFields(logger.Fields{"file": path, "rows": len(out)}).
		Info("extracted shrinkage rows")
	return out, nil
}
