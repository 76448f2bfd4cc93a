package importer

import (
	"context"

	"dolce-almacen/internal/catalog"
	"dolce-almacen/internal/models"
	"dolce-almacen/internal/normalize"
	apperrors "dolce-almacen/pkg/errors"
	"dolce-almacen/pkg/logger"
)

// ReconcileAlias binds a normalized name variant to an item, repointing an
// existing alias if one is in the way. This is the deliberate counterpart to
// the import's auto-creation path, which never repoints: retargeting only
// happens here, on explicit operator request, with the old target logged.
func (r *Runner) ReconcileAlias(ctx context.Context, rawVariant string, itemID int64) error {
	key := normalize.Key(rawVariant)
	if key == "" {
		return apperrors.ConfigError(apperrors.CodeInvalidConfig, "alias", rawVariant, nil).
			WithSuggestion("the alias text normalizes to an empty key")
	}

	lock, err := catalog.AcquireRunLock(r.store.Path())
	if err != nil {
		return err
	}
	defer lock.Release()

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	existing, err := tx.GetAlias(key)
	if err != nil {
		return err
	}

	switch {
	case existing == nil:
		if err := tx.InsertAlias(&models.ItemAlias{NormalizedKey: key, ItemID: itemID}); err != nil {
			return err
		}
		r.logger.WithFields(logger.Fields{"alias": key, "item_id": itemID}).
			Info("alias created")
	case existing.ItemID == itemID:
		// Already bound as requested; nothing to change.
		return nil
	default:
		if err := tx.RepointAlias(key, itemID); err != nil {
			return err
		}
		r.logger.WithFields(logger.Fields{
			"alias":       key,
			"old_item_id": existing.ItemID,
			"new_item_id": itemID,
		}).Warn("alias repointed")
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
