package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dolce-almacen/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustBegin(t *testing.T, store *Store) *Tx {
	t.Helper()
	tx, err := store.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	return tx
}

func TestInsertAndListItems(t *testing.T) {
	store := openTestStore(t)
	tx := mustBegin(t, store)
	defer tx.Rollback()

	id, err := tx.InsertItem(&models.CanonicalItem{
		Name:           "Harina Pastelera",
		NormalizedName: "harina pastelera",
		Unit:           "kg",
	})
	if err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive item id, got %d", id)
	}

	items, err := tx.ListItems()
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].NormalizedName != "harina pastelera" {
		t.Errorf("unexpected normalized name: %q", items[0].NormalizedName)
	}
}

func TestAliasLifecycle(t *testing.T) {
	store := openTestStore(t)
	tx := mustBegin(t, store)
	defer tx.Rollback()

	itemID, err := tx.InsertItem(&models.CanonicalItem{
		Name: "Azucar Glace", NormalizedName: "azucar glace", Unit: "kg",
	})
	if err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}
	otherID, err := tx.InsertItem(&models.CanonicalItem{
		Name: "Azucar Moreno", NormalizedName: "azucar moreno", Unit: "kg",
	})
	if err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}

	if err := tx.InsertAlias(&models.ItemAlias{NormalizedKey: "azucar impalpable", ItemID: itemID}); err != nil {
		t.Fatalf("InsertAlias failed: %v", err)
	}

	alias, err := tx.GetAlias("azucar impalpable")
	if err != nil {
		t.Fatalf("GetAlias failed: %v", err)
	}
	if alias == nil || alias.ItemID != itemID {
		t.Fatalf("alias lookup returned %+v, want item %d", alias, itemID)
	}

	// Duplicate key must be rejected by the primary key constraint.
	if err := tx.InsertAlias(&models.ItemAlias{NormalizedKey: "azucar impalpable", ItemID: otherID}); err == nil {
		t.Errorf("second alias for the same key should fail")
	}

	if err := tx.RepointAlias("azucar impalpable", otherID); err != nil {
		t.Fatalf("RepointAlias failed: %v", err)
	}
	alias, err = tx.GetAlias("azucar impalpable")
	if err != nil {
		t.Fatalf("GetAlias after repoint failed: %v", err)
	}
	if alias.ItemID != otherID {
		t.Errorf("repoint did not take effect: item %d, want %d", alias.ItemID, otherID)
	}

	if err := tx.RepointAlias("does not exist", otherID); err == nil {
		t.Errorf("repointing a missing alias should fail")
	}

	missing, err := tx.GetAlias("nunca visto")
	if err != nil {
		t.Fatalf("GetAlias for missing key failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil alias for unknown key, got %+v", missing)
	}
}

func TestSnapshotUpsertAndAdjust(t *testing.T) {
	store := openTestStore(t)
	tx := mustBegin(t, store)
	defer tx.Rollback()

	itemID, err := tx.InsertItem(&models.CanonicalItem{
		Name: "Mantequilla", NormalizedName: "mantequilla", Unit: "kg",
	})
	if err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}

	snap := &models.StockSnapshot{
		ItemID:       itemID,
		Quantity:     decimal.RequireFromString("12.5"),
		ReorderPoint: decimal.RequireFromString("5"),
		MinStock:     decimal.RequireFromString("2"),
		MaxStock:     decimal.RequireFromString("40"),
		LeadTimeDays: 3,
	}
	if err := tx.UpsertSnapshot(snap); err != nil {
		t.Fatalf("UpsertSnapshot failed: %v", err)
	}

	if err := tx.AdjustSnapshotQuantity(itemID, decimal.RequireFromString("3")); err != nil {
		t.Fatalf("AdjustSnapshotQuantity failed: %v", err)
	}

	got, err := tx.GetSnapshot(itemID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if !got.Quantity.Equal(decimal.RequireFromString("15.5")) {
		t.Errorf("quantity = %s, want 15.5", got.Quantity)
	}
	if got.LeadTimeDays != 3 {
		t.Errorf("lead time days = %d, want 3", got.LeadTimeDays)
	}

	// Adjusting an item without a snapshot starts from zero.
	otherID, err := tx.InsertItem(&models.CanonicalItem{
		Name: "Levadura", NormalizedName: "levadura", Unit: "g",
	})
	if err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}
	if err := tx.AdjustSnapshotQuantity(otherID, decimal.RequireFromString("-2")); err != nil {
		t.Fatalf("AdjustSnapshotQuantity on fresh item failed: %v", err)
	}
	fresh, err := tx.GetSnapshot(otherID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if !fresh.Quantity.Equal(decimal.RequireFromString("-2")) {
		t.Errorf("fresh snapshot quantity = %s, want -2", fresh.Quantity)
	}
}

func TestLedgerFingerprintUnique(t *testing.T) {
	store := openTestStore(t)
	tx := mustBegin(t, store)
	defer tx.Rollback()

	itemID, err := tx.InsertItem(&models.CanonicalItem{
		Name: "Cacao", NormalizedName: "cacao", Unit: "kg",
	})
	if err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}

	entry := &models.LedgerEntry{
		Fingerprint: "abc123",
		Kind:        models.MovementEntrada,
		ItemID:      itemID,
		Quantity:    decimal.RequireFromString("3"),
		MovedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Reference:   "ENTRADA|test|fila 2",
	}
	if err := tx.InsertLedgerEntry(entry); err != nil {
		t.Fatalf("InsertLedgerEntry failed: %v", err)
	}

	exists, err := tx.HasFingerprint("abc123")
	if err != nil {
		t.Fatalf("HasFingerprint failed: %v", err)
	}
	if !exists {
		t.Errorf("fingerprint should exist after insert")
	}

	exists, err = tx.HasFingerprint("never seen")
	if err != nil {
		t.Fatalf("HasFingerprint failed: %v", err)
	}
	if exists {
		t.Errorf("unknown fingerprint reported as existing")
	}

	dup := *entry
	dup.ID = 0
	if err := tx.InsertLedgerEntry(&dup); err == nil {
		t.Errorf("duplicate fingerprint insert should fail")
	}
}

func TestRollbackLeavesNoTrace(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tx := mustBegin(t, store)
	if _, err := tx.InsertItem(&models.CanonicalItem{
		Name: "Vainilla", NormalizedName: "vainilla", Unit: "ml",
	}); err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	n, err := store.ItemCount(ctx)
	if err != nil {
		t.Fatalf("ItemCount failed: %v", err)
	}
	if n != 0 {
		t.Errorf("rolled-back item visible: count %d", n)
	}
}

func TestRunLockSingleFlight(t *testing.T) {
	store := openTestStore(t)

	lock, err := AcquireRunLock(store.Path())
	if err != nil {
		t.Fatalf("AcquireRunLock failed: %v", err)
	}

	if _, err := AcquireRunLock(store.Path()); err == nil {
		t.Errorf("second AcquireRunLock should fail while lock is held")
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	again, err := AcquireRunLock(store.Path())
	if err != nil {
		t.Fatalf("AcquireRunLock after release failed: %v", err)
	}
	again.Release()
}
