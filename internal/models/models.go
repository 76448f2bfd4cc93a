// Package models defines the core domain records shared across the import
// engine: catalog items and their aliases, the transient rows produced by the
// workbook extractors, the persisted stock snapshots and ledger entries, and
// the per-run import summary.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies one of the four warehouse export documents.
type Source string

const (
	// SourceStock is the full warehouse snapshot export.
	SourceStock Source = "stock"
	// SourceInbound is the goods-received (entradas) export.
	SourceInbound Source = "inbound"
	// SourceOutbound is the goods-issued (salidas) export.
	SourceOutbound Source = "outbound"
	// SourceShrinkage is the loss/waste (mermas) export.
	SourceShrinkage Source = "shrinkage"
)

// String returns the string representation of the Source
func (s Source) String() string {
	return string(s)
}

// IsValid checks if the source is one of the four known documents
func (s Source) IsValid() bool {
	switch s {
	case SourceStock, SourceInbound, SourceOutbound, SourceShrinkage:
		return true
	default:
		return false
	}
}

// AllSources returns the four sources in their deterministic processing
// order. Snapshot rows must be applied before movements, so stock comes
// first; the remaining order is fixed so that re-runs read documents
// identically.
func AllSources() []Source {
	return []Source{SourceStock, SourceInbound, SourceOutbound, SourceShrinkage}
}

// MovementKind represents the direction of a ledger movement. The values
// mirror the headings used in the warehouse documents themselves.
type MovementKind string

const (
	// MovementEntrada is an inbound receipt; it increases stock.
	MovementEntrada MovementKind = "ENTRADA"
	// MovementSalida is an outbound issue; it decreases stock.
	MovementSalida MovementKind = "SALIDA"
	// MovementConsumo is shrinkage or internal consumption; it decreases stock.
	MovementConsumo MovementKind = "CONSUMO"
)

// String returns the string representation of the MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// IsValid checks if the movement kind is valid
func (k MovementKind) IsValid() bool {
	return k == MovementEntrada || k == MovementSalida || k == MovementConsumo
}

// Delta returns the signed quantity this movement applies to a snapshot.
func (k MovementKind) Delta(qty decimal.Decimal) decimal.Decimal {
	if k == MovementEntrada {
		return qty
	}
	return qty.Neg()
}

// CanonicalItem is one authoritative catalog entry that raw warehouse names
// resolve to.
type CanonicalItem struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	NormalizedName  string    `json:"normalized_name"`
	Unit            string    `json:"unit"`
	DefaultSupplier string    `json:"default_supplier,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate performs basic validation on the CanonicalItem
func (c *CanonicalItem) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("item name cannot be empty")
	}
	if strings.TrimSpace(c.NormalizedName) == "" {
		return fmt.Errorf("item normalized name cannot be empty")
	}
	if strings.TrimSpace(c.Unit) == "" {
		return fmt.Errorf("item unit cannot be empty")
	}
	return nil
}

// String returns a string representation of the CanonicalItem
func (c *CanonicalItem) String() string {
	return fmt.Sprintf("CanonicalItem{ID: %d, Name: %s, Unit: %s}", c.ID, c.Name, c.Unit)
}

// ItemAlias maps one normalized name variant to exactly one canonical item.
// At most one alias may exist per normalized key.
type ItemAlias struct {
	NormalizedKey string    `json:"normalized_key"`
	ItemID        int64     `json:"item_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate performs basic validation on the ItemAlias
func (a *ItemAlias) Validate() error {
	if strings.TrimSpace(a.NormalizedKey) == "" {
		return fmt.Errorf("alias key cannot be empty")
	}
	if a.ItemID <= 0 {
		return fmt.Errorf("alias must reference a catalog item")
	}
	return nil
}

// StockRow is one warehouse-snapshot observation as extracted from the stock
// document. Rows are transient: consumed once per import run.
type StockRow struct {
	Source          Source
	Locator         string
	RawName         string
	RawUnit         string
	Quantity        decimal.Decimal
	ReorderPoint    decimal.Decimal
	MinStock        decimal.Decimal
	MaxStock        decimal.Decimal
	AvgInventory    decimal.Decimal
	LeadTimeDays    int
	AvgDailyConsume decimal.Decimal
}

// MovementRow is one inbound/outbound/shrinkage event as extracted from a
// movement document. Rows are transient: consumed once per import run.
type MovementRow struct {
	Source    Source
	Locator   string
	Kind      MovementKind
	Timestamp time.Time
	RawName   string
	RawUnit   string
	Quantity  decimal.Decimal
	Reference string
}

// Validate performs basic validation on the MovementRow
func (m *MovementRow) Validate() error {
	if !m.Kind.IsValid() {
		return fmt.Errorf("invalid movement kind: %s", m.Kind)
	}
	if !m.Quantity.IsPositive() {
		return fmt.Errorf("movement quantity must be positive, got %s", m.Quantity)
	}
	if strings.TrimSpace(m.RawName) == "" {
		return fmt.Errorf("movement name cannot be empty")
	}
	return nil
}

// StockSnapshot is the persisted current stock level and reorder parameters
// for one canonical item. Exactly one snapshot exists per item; snapshot
// imports overwrite it wholesale and movements adjust the quantity in place.
type StockSnapshot struct {
	ItemID          int64           `json:"item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	MinStock        decimal.Decimal `json:"min_stock"`
	MaxStock        decimal.Decimal `json:"max_stock"`
	AvgInventory    decimal.Decimal `json:"avg_inventory"`
	LeadTimeDays    int             `json:"lead_time_days"`
	AvgDailyConsume decimal.Decimal `json:"avg_daily_consumption"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// LedgerEntry is the persisted, immutable record of one applied movement.
// Fingerprint is unique across the entire ledger; it is the idempotency
// guarantee for re-imported documents.
type LedgerEntry struct {
	ID          int64           `json:"id"`
	Fingerprint string          `json:"fingerprint"`
	Kind        MovementKind    `json:"kind"`
	ItemID      int64           `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	MovedAt     time.Time       `json:"moved_at"`
	Reference   string          `json:"reference"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate performs basic validation on the LedgerEntry
func (e *LedgerEntry) Validate() error {
	if strings.TrimSpace(e.Fingerprint) == "" {
		return fmt.Errorf("ledger entry fingerprint cannot be empty")
	}
	if !e.Kind.IsValid() {
		return fmt.Errorf("invalid movement kind: %s", e.Kind)
	}
	if e.ItemID <= 0 {
		return fmt.Errorf("ledger entry must reference a catalog item")
	}
	if !e.Quantity.IsPositive() {
		return fmt.Errorf("ledger entry quantity must be positive, got %s", e.Quantity)
	}
	return nil
}

// PendingMatch is a row whose identity could not be confidently resolved,
// reported for operator triage. It never mutates state.
type PendingMatch struct {
	Source         Source `json:"source"`
	Locator        string `json:"row"`
	RawName        string `json:"raw_name"`
	NormalizedName string `json:"normalized_name"`
	BestScore      int    `json:"score"`
	Suggestion     string `json:"suggestion,omitempty"`
}

// AliasConflict reports an alias auto-creation that was refused because the
// normalized key already points at a different item. Conflicts are surfaced,
// never silently repointed.
type AliasConflict struct {
	NormalizedKey  string `json:"normalized_key"`
	ExistingItemID int64  `json:"existing_item_id"`
	AttemptedItem  int64  `json:"attempted_item_id"`
	Source         Source `json:"source"`
	Locator        string `json:"row"`
}

// ImportSummary aggregates the counters and reports of one import run. It is
// built fresh per run and never persisted by the engine itself.
type ImportSummary struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	DryRun    bool          `json:"dry_run"`

	RowsRead map[Source]int `json:"rows_read"`

	Matched          int `json:"matched"`
	Unmatched        int `json:"unmatched"`
	ItemsCreated     int `json:"items_created"`
	AliasesCreated   int `json:"aliases_created"`
	SnapshotsUpdated int `json:"snapshots_updated"`
	LedgerCreated    int `json:"ledger_entries_created"`
	DuplicatesSkip   int `json:"duplicates_skipped"`

	Pending          []PendingMatch  `json:"pending,omitempty"`
	PendingTruncated bool            `json:"pending_truncated,omitempty"`
	AliasConflicts   []AliasConflict `json:"alias_conflicts,omitempty"`
	Errors           []string        `json:"errors,omitempty"`
}

// NewImportSummary creates an empty summary with its counters initialized
func NewImportSummary(dryRun bool) *ImportSummary {
	return &ImportSummary{
		StartedAt: time.Now(),
		DryRun:    dryRun,
		RowsRead:  make(map[Source]int),
	}
}

// TotalRowsRead returns the number of extracted rows across all sources
func (s *ImportSummary) TotalRowsRead() int {
	total := 0
	for _, n := range s.RowsRead {
		total += n
	}
	return total
}

// AddError records a non-fatal error message on the summary
func (s *ImportSummary) AddError(format string, args ...interface{}) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}
