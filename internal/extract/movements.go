package extract

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dolce-almacen/internal/models"
	"dolce-almacen/pkg/logger"
)

// Inbound/outbound layout: one header row, then one row per movement. The
// second column distinguishes the document: supplier on receipts,
// destination on issues.
const (
	movementHeaderRows = 1

	movementColDate     = 0
	movementColParty    = 1
	movementColName     = 2
	movementColUnit     = 3
	movementColQuantity = 4
)

// MovementExtractor reads a per-row dated movement export: entradas.xlsx
// (receipts) or salidas.xlsx (issues).
type MovementExtractor struct {
	source models.Source
	kind   models.MovementKind
	logger logger.Logger

	// now stamps rows whose date cell does not parse. Swappable in tests.
	now func() time.Time
}

// NewInboundExtractor creates the extractor for the receipts document
func NewInboundExtractor() *MovementExtractor {
	return &MovementExtractor{
		source: models.SourceInbound,
		kind:   models.MovementEntrada,
		logger: logger.GetGlobalLogger().WithComponent("extract.inbound"),
		now:    time.Now,
	}
}

// NewOutboundExtractor creates the extractor for the issues document
func NewOutboundExtractor() *MovementExtractor {
	return &MovementExtractor{
		source: models.SourceOutbound,
		kind:   models.MovementSalida,
		logger: logger.GetGlobalLogger().WithComponent("extract.outbound"),
		now:    time.Now,
	}
}

// Extract turns the movement document into MovementRows. Rows without a name
// and rows whose quantity parses to zero or negative are dropped silently.
func (e *MovementExtractor) Extract(path string) ([]models.MovementRow, error) {
	rows, err := readSheet(path)
	if err != nil {
		return nil, err
	}

	var out []models.MovementRow
	for i, row := range rows {
		if i < movementHeaderRows {
			continue
		}
		excelRow := i + 1

		name := cellAt(row, movementColName)
		if name == "" {
			continue
		}

		qty, ok := ParseQuantity(cellAt(row, movementColQuantity), decimal.Zero)
		if !ok || !qty.IsPositive() {
			continue
		}

		when, dateOK := ParseDate(cellAt(row, movementColDate), e.now())
		if !dateOK {
			e.logger.WithFields(logger.Fields{
				"row":  excelRow,
				"cell": cellAt(row, movementColDate),
			}).Debug("movement date cell fell back to now")
		}

		party := cellAt(row, movementColParty)
		locator := rowLocator(excelRow)

		out = append(out, models.MovementRow{
			Source:    e.source,
			Locator:   locator,
			Kind:      e.kind,
			Timestamp: when,
			RawName:   name,
			RawUnit:   cellAt(row, movementColUnit),
			Quantity:  qty,
			Reference: fmt.Sprintf("%s|%s|%s", e.kind, party, locator),
		})
	}

	e.logger.WithFields(logger.Fields{"file": path, "rows": len(out)}).
		Info("extracted movement rows")
	return out, nil
}
