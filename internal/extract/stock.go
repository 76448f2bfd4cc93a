package extract

import (
	"github.com/shopspring/decimal"

	"dolce-almacen/internal/models"
	"dolce-almacen/pkg/logger"
)

// Stock snapshot layout: two header rows (title + column headings), then one
// row per observed item.
const (
	stockHeaderRows = 2

	stockColName         = 0
	stockColUnit         = 1
	stockColQuantity     = 2
	stockColReorderPoint = 3
	stockColMinStock     = 4
	stockColMaxStock     = 5
	stockColAvgInventory = 6
	stockColLeadDays     = 7
	stockColAvgConsume   = 8
)

// StockExtractor reads the warehouse snapshot export (inventario.xlsx).
type StockExtractor struct {
	logger logger.Logger
}

// NewStockExtractor creates a stock snapshot extractor
func NewStockExtractor() *StockExtractor {
	return &StockExtractor{
		logger: logger.GetGlobalLogger().WithComponent("extract.stock"),
	}
}

// Extract turns the snapshot document into StockRows. Every row with a name
// becomes one StockRow; quantities parse tolerantly with zero as the
// default.
func (e *StockExtractor) Extract(path string) ([]models.StockRow, error) {
	rows, err := readSheet(path)
	if err != nil {
		return nil, err
	}

	var out []models.StockRow
	for i, row := range rows {
		if i < stockHeaderRows {
			continue
		}
		excelRow := i + 1

		name := cellAt(row, stockColName)
		if name == "" {
			continue
		}

		qty, ok := ParseQuantity(cellAt(row, stockColQuantity), decimal.Zero)
		if !ok {
			e.logger.WithFields(logger.Fields{
				"row":  excelRow,
				"cell": cellAt(row, stockColQuantity),
			}).Debug("stock quantity cell defaulted to zero")
		}
		reorder, _ := ParseQuantity(cellAt(row, stockColReorderPoint), decimal.Zero)
		minStock, _ := ParseQuantity(cellAt(row, stockColMinStock), decimal.Zero)
		maxStock, _ := ParseQuantity(cellAt(row, stockColMaxStock), decimal.Zero)
		avgInv, _ := ParseQuantity(cellAt(row, stockColAvgInventory), decimal.Zero)
		leadDays, _ := ParseLeadDays(cellAt(row, stockColLeadDays))
		avgConsume, _ := ParseQuantity(cellAt(row, stockColAvgConsume), decimal.Zero)

		out = append(out, models.StockRow{
			Source:          models.SourceStock,
			Locator:         rowLocator(excelRow),
			RawName:         name,
			RawUnit:         cellAt(row, stockColUnit),
			Quantity:        qty,
			ReorderPoint:    reorder,
			MinStock:        minStock,
			MaxStock:        maxStock,
			AvgInventory:    avgInv,
			LeadTimeDays:    leadDays,
			AvgDailyConsume: avgConsume,
		})
	}

	e.logger.WithFields(logger.Fields{"file": path, "rows": len(out)}).
		Info("extracted stock snapshot rows")
	return out, nil
}
