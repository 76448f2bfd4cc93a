// Package importer drives one reconciliation run: extract the selected
// warehouse documents, resolve every row against the catalog, optionally
// create missing items and aliases, apply snapshots and deduplicated ledger
// movements, and report an ImportSummary.
//
// One run is one store transaction. Dry-run executes the full pipeline so
// its summary is accurate, then rolls the transaction back unconditionally.
// An advisory run lock serializes concurrent runs against the same catalog.
package importer

import (
	"context"
	"strings"
	"time"

	"dolce-almacen/internal/catalog"
	"dolce-almacen/internal/extract"
	"dolce-almacen/internal/matcher"
	"dolce-almacen/internal/models"
	apperrors "dolce-almacen/pkg/errors"
	"dolce-almacen/pkg/logger"
)

// Request configures one import run.
type Request struct {
	// SourceDir is the folder holding the four warehouse exports.
	SourceDir string

	// Sources selects which documents to ingest. Empty means all four.
	Sources []models.Source

	// FuzzyThreshold is the minimum score for a fuzzy name match.
	FuzzyThreshold int

	// CreateAliases enables recording an alias when a fuzzy match scores at
	// or above AliasThreshold.
	CreateAliases bool

	// AliasThreshold is the minimum fuzzy score for alias auto-creation.
	// Independent from FuzzyThreshold and normally at least as strict.
	AliasThreshold int

	// CreateMissingItems enables creating catalog items for unmatched rows.
	CreateMissingItems bool

	// DryRun executes the full pipeline and rolls everything back.
	DryRun bool

	// MaxPending caps the pending-match list carried in the summary; the
	// unmatched counter keeps counting past the cap.
	MaxPending int
}

// DefaultRequest returns a request with the standard movement-import
// settings.
func DefaultRequest(sourceDir string) Request {
	return Request{
		SourceDir:      sourceDir,
		Sources:        models.AllSources(),
		FuzzyThreshold: 90,
		AliasThreshold: 95,
		MaxPending:     200,
	}
}

// Validate validates the request
func (r *Request) Validate() error {
	if strings.TrimSpace(r.SourceDir) == "" {
		return apperrors.ConfigError(apperrors.CodeMissingConfig, "source-dir", r.SourceDir, nil)
	}
	if r.FuzzyThreshold < 0 || r.FuzzyThreshold > 100 {
		return apperrors.ConfigError(apperrors.CodeInvalidConfig, "fuzzy-threshold", r.FuzzyThreshold, nil)
	}
	if r.AliasThreshold < 0 || r.AliasThreshold > 100 {
		return apperrors.ConfigError(apperrors.CodeInvalidConfig, "alias-threshold", r.AliasThreshold, nil)
	}
	for _, source := range r.Sources {
		if !source.IsValid() {
			return apperrors.ConfigError(apperrors.CodeInvalidConfig, "sources", source, nil)
		}
	}
	if r.MaxPending < 0 {
		return apperrors.ConfigError(apperrors.CodeInvalidConfig, "max-pending", r.MaxPending, nil)
	}
	return nil
}

func (r *Request) includes(source models.Source) bool {
	if len(r.Sources) == 0 {
		return true
	}
	for _, s := range r.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// Runner executes import runs against one catalog store.
type Runner struct {
	store  *catalog.Store
	logger logger.Logger
}

// NewRunner creates an import runner
func NewRunner(store *catalog.Store) *Runner {
	return &Runner{
		store:  store,
		logger: logger.GetGlobalLogger().WithComponent("importer"),
	}
}

// Run executes one import run and returns its summary. The summary is valid
// on success and on dry-run; any returned error means the transaction was
// rolled back and nothing was applied.
func (r *Runner) Run(ctx context.Context, req Request) (*models.ImportSummary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lock, err := catalog.AcquireRunLock(r.store.Path())
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	summary := models.NewImportSummary(req.DryRun)

	r.logger.WithFields(logger.Fields{
		"source_dir": req.SourceDir,
		"dry_run":    req.DryRun,
	}).Info("import run starting")

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	engine, err := r.buildEngine(tx, req)
	if err != nil {
		return nil, err
	}

	run := &runState{
		req:     req,
		tx:      tx,
		engine:  engine,
		summary: summary,
		logger:  r.logger,
	}

	stockRows, movementRows, err := run.extract()
	if err != nil {
		return nil, err
	}

	if err := run.applyStock(stockRows); err != nil {
		return nil, err
	}
	if err := run.applyMovements(movementRows); err != nil {
		return nil, err
	}

	summary.Duration = time.Since(summary.StartedAt)

	if req.DryRun {
		if err := tx.Rollback(); err != nil {
			return nil, err
		}
		committed = true // nothing left to roll back
		r.logger.Info("dry run complete; all changes rolled back")
		return summary, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	r.logger.WithFields(logger.Fields{
		"matched":        summary.Matched,
		"unmatched":      summary.Unmatched,
		"ledger_entries": summary.LedgerCreated,
		"duplicates":     summary.DuplicatesSkip,
	}).Info("import run committed")
	return summary, nil
}

// buildEngine snapshots the catalog into a request-scoped matcher index.
func (r *Runner) buildEngine(tx *catalog.Tx, req Request) (*matcher.Engine, error) {
	items, err := tx.ListItems()
	if err != nil {
		return nil, err
	}
	aliases, err := tx.ListAliases()
	if err != nil {
		return nil, err
	}

	cfg := matcher.DefaultConfig()
	cfg.FuzzyThreshold = req.FuzzyThreshold
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.ConfigError(apperrors.CodeInvalidConfig, "matcher", nil, err)
	}
	return matcher.NewEngine(cfg, matcher.NewIndex(items, aliases)), nil
}

// runState carries the per-run working set through the pipeline phases.
type runState struct {
	req     Request
	tx      *catalog.Tx
	engine  *matcher.Engine
	summary *models.ImportSummary
	logger  logger.Logger

	emptyCatalogReported bool
}

// extract reads every selected document in the fixed deterministic order:
// stock first, then inbound, outbound, shrinkage.
func (s *runState) extract() ([]models.StockRow, []models.MovementRow, error) {
	var stockRows []models.StockRow
	var movementRows []models.MovementRow

	for _, source := range models.AllSources() {
		if !s.req.includes(source) {
			continue
		}
		path := extract.SourcePath(s.req.SourceDir, source)

		switch source {
		case models.SourceStock:
			rows, err := extract.NewStockExtractor().Extract(path)
			if err != nil {
				return nil, nil, err
			}
			stockRows = rows
			s.summary.RowsRead[source] = len(rows)
		case models.SourceInbound:
			rows, err := extract.NewInboundExtractor().Extract(path)
			if err != nil {
				return nil, nil, err
			}
			movementRows = append(movementRows, rows...)
			s.summary.RowsRead[source] = len(rows)
		case models.SourceOutbound:
			rows, err := extract.NewOutboundExtractor().Extract(path)
			if err != nil {
				return nil, nil, err
			}
			movementRows = append(movementRows, rows...)
			s.summary.RowsRead[source] = len(rows)
		case models.SourceShrinkage:
			rows, err := extract.NewShrinkageExtractor().Extract(path)
			if err != nil {
				return nil, nil, err
			}
			movementRows = append(movementRows, rows...)
			s.summary.RowsRead[source] = len(rows)
		}
	}

	return stockRows, movementRows, nil
}

// resolveRow resolves one raw name and handles the shared bookkeeping:
// ignored rows vanish, unresolved rows become pending matches or created
// items, fuzzy hits may mint aliases. The returned item is nil when the row
// must be skipped.
func (s *runState) resolveRow(source models.Source, locator, rawName, rawUnit string) (*models.CanonicalItem, error) {
	result := s.engine.Resolve(rawName)

	switch result.Type {
	case matcher.MatchIgnored:
		return nil, nil

	case matcher.MatchExact, matcher.MatchAlias:
		s.summary.Matched++
		return result.Item, nil

	case matcher.MatchFuzzy:
		s.summary.Matched++
		if err := s.maybeCreateAlias(source, locator, result); err != nil {
			return nil, err
		}
		return result.Item, nil

	case matcher.MatchNoCatalog:
		if !s.emptyCatalogReported {
			s.summary.AddError("catalog is empty; enable item creation or seed the catalog first")
			s.emptyCatalogReported = true
		}
		fallthrough

	default: // MatchNone
		if s.req.CreateMissingItems {
			item, err := s.createItem(rawName, result.NormalizedName, rawUnit)
			if err != nil {
				return nil, err
			}
			return item, nil
		}

		s.summary.Unmatched++
		if len(s.summary.Pending) < s.req.MaxPending {
			s.summary.Pending = append(s.summary.Pending, models.PendingMatch{
				Source:         source,
				Locator:        locator,
				RawName:        rawName,
				NormalizedName: result.NormalizedName,
				BestScore:      maxInt(result.Score, 0),
				Suggestion:     result.Suggestion,
			})
		} else {
			s.summary.PendingTruncated = true
		}
		return nil, nil
	}
}

// createItem creates a catalog item for an unresolved name and registers it
// in the run's index so later rows resolve to it.
func (s *runState) createItem(rawName, normalizedName, rawUnit string) (*models.CanonicalItem, error) {
	item := &models.CanonicalItem{
		Name:           strings.TrimSpace(rawName),
		NormalizedName: normalizedName,
		Unit:           InferUnit(rawUnit),
	}
	if _, err := s.tx.InsertItem(item); err != nil {
		return nil, err
	}
	s.engine.Index().AddItem(item)
	s.summary.ItemsCreated++

	s.logger.WithFields(logger.Fields{
		"item": item.Name,
		"unit": item.Unit,
	}).Debug("created missing catalog item")
	return item, nil
}

// maybeCreateAlias records an alias for a confident fuzzy hit. It never
// repoints: a key already aliased to a different item is surfaced as a
// conflict and left alone. Explicit retargeting is ReconcileAlias's job.
func (s *runState) maybeCreateAlias(source models.Source, locator string, result matcher.MatchResult) error {
	if !s.req.CreateAliases || result.Score < s.req.AliasThreshold {
		return nil
	}

	existing, err := s.tx.GetAlias(result.NormalizedName)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.ItemID != result.Item.ID {
			s.summary.AliasConflicts = append(s.summary.AliasConflicts, models.AliasConflict{
				NormalizedKey:  result.NormalizedName,
				ExistingItemID: existing.ItemID,
				AttemptedItem:  result.Item.ID,
				Source:         source,
				Locator:        locator,
			})
		}
		return nil
	}

	if err := s.tx.InsertAlias(&models.ItemAlias{
		NormalizedKey: result.NormalizedName,
		ItemID:        result.Item.ID,
	}); err != nil {
		return err
	}
	s.engine.Index().AddAlias(result.NormalizedName, result.Item)
	s.summary.AliasesCreated++
	return nil
}

// applyStock overwrites snapshots wholesale for every resolved stock row.
// Rows arrive in document order, so the last row for an item wins.
func (s *runState) applyStock(rows []models.StockRow) error {
	for i := range rows {
		row := &rows[i]
		item, err := s.resolveRow(row.Source, row.Locator, row.RawName, row.RawUnit)
		if err != nil {
			return err
		}
		if item == nil {
			continue
		}

		if err := s.tx.UpsertSnapshot(&models.StockSnapshot{
			ItemID:          item.ID,
			Quantity:        row.Quantity,
			ReorderPoint:    row.ReorderPoint,
			MinStock:        row.MinStock,
			MaxStock:        row.MaxStock,
			AvgInventory:    row.AvgInventory,
			LeadTimeDays:    row.LeadTimeDays,
			AvgDailyConsume: row.AvgDailyConsume,
		}); err != nil {
			return err
		}
		s.summary.SnapshotsUpdated++
	}
	return nil
}

// applyMovements deduplicates and applies every resolved movement row.
func (s *runState) applyMovements(rows []models.MovementRow) error {
	for i := range rows {
		row := &rows[i]
		item, err := s.resolveRow(row.Source, row.Locator, row.RawName, row.RawUnit)
		if err != nil {
			return err
		}
		if item == nil {
			continue
		}

		fingerprint := movementFingerprint(row, item.NormalizedName)
		exists, err := s.tx.HasFingerprint(fingerprint)
		if err != nil {
			return err
		}
		if exists {
			s.summary.DuplicatesSkip++
			continue
		}

		if err := s.tx.InsertLedgerEntry(&models.LedgerEntry{
			Fingerprint: fingerprint,
			Kind:        row.Kind,
			ItemID:      item.ID,
			Quantity:    row.Quantity,
			MovedAt:     row.Timestamp,
			Reference:   row.Reference,
		}); err != nil {
			return err
		}
		if err := s.tx.AdjustSnapshotQuantity(item.ID, row.Kind.Delta(row.Quantity)); err != nil {
			return err
		}
		s.summary.LedgerCreated++
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
