package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"dolce-almacen/internal/models"
	apperrors "dolce-almacen/pkg/errors"
)

// Tx wraps the single database transaction of one import run. Commit applies
// every mutation of the run at once; Rollback (always taken on dry-run and on
// hard failure) leaves the store untouched.
type Tx struct {
	tx  *sql.Tx
	ctx context.Context
}

// Commit applies all mutations performed through this Tx.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return apperrors.CatalogError(apperrors.CodeTxFailed, "commit", err)
	}
	return nil
}

// Rollback discards all mutations performed through this Tx. Safe to call
// after Commit; the redundant call is ignored.
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.CatalogError(apperrors.CodeTxFailed, "rollback", err)
	}
	return nil
}

// ListItems returns every catalog item visible to this transaction, ordered
// by id for deterministic index construction.
func (t *Tx) ListItems() ([]*models.CanonicalItem, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		`SELECT id, name, normalized_name, unit, default_supplier, created_at
		 FROM items ORDER BY id`)
	if err != nil {
		return nil, apperrors.CatalogError(apperrors.CodeQueryFailed, "list items", err)
	}
	defer rows.Close()

	var items []*models.CanonicalItem
	for rows.Next() {
		var item models.CanonicalItem
		var createdAt string
		if err := rows.Scan(&item.ID, &item.Name, &item.NormalizedName,
			&item.Unit, &item.DefaultSupplier, &createdAt); err != nil {
			return nil, apperrors.CatalogError(apperrors.CodeQueryFailed, "scan item", err)
		}
		item.CreatedAt = parseStoredTime(createdAt)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.CatalogError(apperrors.CodeQueryFailed, "iterate items", err)
	}
	return items, nil
}

// ListAliases returns every alias visible to this transaction.
func (t *Tx) ListAliases() ([]*models.ItemAlias, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		`SELECT normalized_key, item_id, created_at FROM aliases ORDER BY normalized_key`)
	if err != nil {
		return nil, apperrors.CatalogError(apperrors.CodeQueryFailed, "list aliases", err)
	}
	defer rows.Close()

	var aliases []*models.ItemAlias
	for rows.Next() {
		var alias models.ItemAlias
		var createdAt string
		if err := rows.Scan(&alias.NormalizedKey, &alias.ItemID, &createdAt); err != nil {
			return nil, apperrors.CatalogError(apperrors.CodeQueryFailed, "scan alias", err)
		}
		alias.CreatedAt = parseStoredTime(createdAt)
		aliases = append(aliases, &alias)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.CatalogError(apperrors.CodeQueryFailed, "iterate aliases", err)
	}
	return aliases, nil
}

// InsertItem creates a new catalog item and returns its id.
func (t *Tx) InsertItem(item *models.CanonicalItem) (int64, error) {
	if err := item.Validate(); err != nil {
		return 0, apperrors.CatalogError(apperrors.CodeQueryFailed, "validate item", err)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	res, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO items (name, normalized_name, unit, default_supplier, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.NormalizedName, item.Unit, item.DefaultSupplier,
		formatStoredTime(item.CreatedAt))
	if err != nil {
		return 0, apperrors.CatalogError(apperrors.CodeQueryFailed, "insert item", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.CatalogError(apperrors.CodeQueryFailed, "item id", err)
	}
	item.ID = id
	return id, nil
}

// GetAlias returns the alias for the given normalized key, or nil when none
// exists.
func (t *Tx) GetAlias(normalizedKey string) (*models.ItemAlias, error) {
	var alias models.ItemAlias
	var createdAt string
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT normalized_key, item_id, created_at FROM aliases WHERE normalized_key = ?`,
		normalizedKey).Scan(&alias.NormalizedKey, &alias.ItemID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.CatalogError(apperrors.CodeQueryFailed, "get alias", err)
	}
	alias.CreatedAt = parseStoredTime(createdAt)
	return &alias, nil
}

// InsertAlias creates a new alias. The normalized key must not already exist.
func (t *Tx) InsertAlias(alias *models.ItemAlias) error {
	if err := alias.Validate(); err != nil {
		return apperrors.CatalogError(apperrors.CodeQueryFailed, "validate alias", err)
	}
	if alias.CreatedAt.IsZero() {
		alias.CreatedAt = time.Now().UTC()
	}
	_, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO aliases (normalized_key, item_id, created_at) VALUES (?, ?, ?)`,
		alias.NormalizedKey, alias.ItemID, formatStoredTime(alias.CreatedAt))
	if err != nil {
		return apperrors.CatalogError(apperrors.CodeQueryFailed, "insert alias", err)
	}
	return nil
}

// RepointAlias retargets an existing alias to a different item. Only the
// explicit reconciliation path may call this; import auto-creation never
// repoints.
func (t *Tx) RepointAlias(normalizedKey string, itemID int64) error {
	res, err := t.tx.ExecContext(t.ctx,
		`UPDATE aliases SET item_id = ? WHERE normalized_key = ?`, itemID, normalizedKey)
	if err != nil {
		return apperrors.CatalogError(apperrors.CodeQueryFailed, "repoint alias", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.CatalogError(apperrors.CodeQueryFailed, "repoint alias", err)
	}
	if affected == 0 {
		return apperrors.CatalogError(apperrors.CodeQueryFailed, "repoint alias",
			errors.New("alias does not exist"))
	}
	return nil
}

// GetSnapshot returns the stock snapshot for an item, or nil when the item
// has none yet.
func (t *Tx) GetSnapshot(itemID int64) (*models.StockSnapshot, error) {
	var snap models.StockSnapshot
	var qty, reorder, minS, maxS, avgInv, avgConsume, updatedAt string
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT item_id, quantity, reorder_point, min_stock, max_stock,
		        avg_inventory, lead_time_days, avg_daily_consumption, updated_at
		 FROM snapshots WHERE item_id = ?`, itemID).
		Scan(&snap.ItemID, &qty, &reorder, &minS, &maxS, &avgInv,
			&snap.LeadTimeDays, &avgConsume, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.CatalogError(apperrors.CodeQueryFailed, "get snapshot", err)
	}

	snap.Quantity = parseStoredDecimal(qty)
	snap.ReorderPoint = parseStoredDecimal(reorder)
	snap.MinStock = parseStoredDecimal(minS)
	snap.MaxStock = parseStoredDecimal(maxS)
	snap.AvgInventory = parseStoredDecimal(avgInv)
	snap.AvgDailyConsume = parseStoredDecimal(avgConsume)
	snap.UpdatedAt = parseStoredTime(updatedAt)
	return &snap, nil
}

// UpsertSnapshot overwrites the item's snapshot wholesale.
func (t *Tx) UpsertSnapshot(snap *models.StockSnapshot) error {
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}
	_, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO snapshots (item_id, quantity, reorder_point, min_stock, max_stock,
		                        avg_inventory, lead_time_days, avg_daily_consumption, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(item_id) DO UPDATE SET
			quantity = excluded.quantity,
			reorder_point = excluded.reorder_point,
			min_stock = excluded.min_stock,
			max_stock = excluded.max_stock,
			avg_inventory = excluded.avg_inventory,
			lead_time_days = excluded.lead_time_days,
			avg_daily_consumption = excluded.avg_daily_consumption,
			updated_at = excluded.updated_at`,
		snap.ItemID, snap.Quantity.String(), snap.ReorderPoint.String(),
		snap.MinStock.String(), snap.MaxStock.String(), snap.AvgInventory.String(),
		snap.LeadTimeDays, snap.AvgDailyConsume.String(),
		formatStoredTime(snap.UpdatedAt))
	if err != nil {
		return apperrors.CatalogError(apperrors.CodeQueryFailed, "upsert snapshot", err)
	}
	return nil
}

// AdjustSnapshotQuantity applies a signed delta to the item's snapshot
// quantity, creating a zero-parameter snapshot first if the item has none.
func (t *Tx) AdjustSnapshotQuantity(itemID int64, delta decimal.Decimal) error {
	snap, err := t.GetSnapshot(itemID)
	if err != nil {
		return err
	}
	if snap == nil {
		snap = &models.StockSnapshot{ItemID: itemID}
	}
	snap.Quantity = snap.Quantity.Add(delta)
	snap.UpdatedAt = time.Now().UTC()
	return t.UpsertSnapshot(snap)
}

// HasFingerprint reports whether a ledger entry with the given fingerprint
// already exists. This is the duplicate check of the idempotent apply.
func (t *Tx) HasFingerprint(fingerprint string) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT 1 FROM ledger WHERE fingerprint = ?`, fingerprint).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.CatalogError(apperrors.CodeQueryFailed, "check fingerprint", err)
	}
	return true, nil
}

// InsertLedgerEntry appends one immutable movement record.
func (t *Tx) InsertLedgerEntry(entry *models.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return apperrors.CatalogError(apperrors.CodeQueryFailed, "validate ledger entry", err)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	res, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO ledger (fingerprint, kind, item_id, quantity, moved_at, reference, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Fingerprint, entry.Kind.String(), entry.ItemID, entry.Quantity.String(),
		formatStoredTime(entry.MovedAt), entry.Reference, formatStoredTime(entry.CreatedAt))
	if err != nil {
		return apperrors.CatalogError(apperrors.CodeQueryFailed, "insert ledger entry", err)
	}
	if id, idErr := res.LastInsertId(); idErr == nil {
		entry.ID = id
	}
	return nil
}

// LedgerCount returns the number of ledger entries visible to this
// transaction, including uncommitted inserts.
func (t *Tx) LedgerCount() (int, error) {
	var n int
	err := t.tx.QueryRowContext(t.ctx, `SELECT COUNT(*) FROM ledger`).Scan(&n)
	if err != nil {
		return 0, apperrors.CatalogError(apperrors.CodeQueryFailed, "count ledger", err)
	}
	return n, nil
}

func formatStoredTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseStoredTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseStoredDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
