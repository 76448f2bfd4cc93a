package importer

import (
	"context"
	"strings"

	"dolce-almacen/internal/catalog"
	"dolce-almacen/internal/extract"
	"dolce-almacen/internal/matcher"
	"dolce-almacen/internal/models"
	"dolce-almacen/pkg/logger"
)

// SeedCatalog loads an initial item list from a stock-layout workbook,
// creating a catalog item for every row that does not already resolve to
// one. Existing items and aliases are left untouched, so seeding is safe to
// repeat. Returns the number of items created.
func (r *Runner) SeedCatalog(ctx context.Context, path string) (int, error) {
	rows, err := extract.NewStockExtractor().Extract(path)
	if err != nil {
		return 0, err
	}

	lock, err := catalog.AcquireRunLock(r.store.Path())
	if err != nil {
		return 0, err
	}
	defer lock.Release()

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	engine, err := r.buildEngine(tx, DefaultRequest("."))
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range rows {
		row := &rows[i]
		result := engine.Resolve(row.RawName)
		if result.Type == matcher.MatchIgnored || result.Type.Resolved() {
			continue
		}

		item := &models.CanonicalItem{
			Name:           strings.TrimSpace(row.RawName),
			NormalizedName: result.NormalizedName,
			Unit:           InferUnit(row.RawUnit),
		}
		if _, err := tx.InsertItem(item); err != nil {
			return 0, err
		}
		engine.Index().AddItem(item)
		created++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true

	r.logger.WithFields(logger.Fields{"file": path, "created": created}).
		Info("catalog seeded")
	return created, nil
}
