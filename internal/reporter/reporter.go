// Package reporter renders import summaries and the pending-match report in
// the formats operators consume: console text, CSV for spreadsheet triage,
// and JSON for programmatic use.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"dolce-almacen/internal/models"
	apperrors "dolce-almacen/pkg/errors"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// pendingHeader is the fixed column set of the pending-match export.
var pendingHeader = []string{"source", "row", "raw_name", "normalized_name", "score", "suggestion"}

// WriteSummary renders the run summary to w in the requested format.
func WriteSummary(w io.Writer, summary *models.ImportSummary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case FormatConsole, FormatCSV:
		return writeConsoleSummary(w, summary)
	default:
		return apperrors.ConfigError(apperrors.CodeInvalidConfig, "output-format", format, nil)
	}
}

func writeConsoleSummary(w io.Writer, summary *models.ImportSummary) error {
	var b strings.Builder

	b.WriteString("Import summary")
	if summary.DryRun {
		b.WriteString(" (dry run, rolled back)")
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")

	for _, source := range models.AllSources() {
		if n, ok := summary.RowsRead[source]; ok {
			fmt.Fprintf(&b, "  rows read (%s): %d\n", source, n)
		}
	}
	fmt.Fprintf(&b, "  matched:            %d\n", summary.Matched)
	fmt.Fprintf(&b, "  unmatched:          %d\n", summary.Unmatched)
	fmt.Fprintf(&b, "  items created:      %d\n", summary.ItemsCreated)
	fmt.Fprintf(&b, "  aliases created:    %d\n", summary.AliasesCreated)
	fmt.Fprintf(&b, "  snapshots updated:  %d\n", summary.SnapshotsUpdated)
	fmt.Fprintf(&b, "  ledger entries:     %d\n", summary.LedgerCreated)
	fmt.Fprintf(&b, "  duplicates skipped: %d\n", summary.DuplicatesSkip)

	if len(summary.AliasConflicts) > 0 {
		b.WriteString("Alias conflicts:\n")
		for _, c := range summary.AliasConflicts {
			fmt.Fprintf(&b, "  %s: bound to item %d, import suggested item %d (%s, %s)\n",
				c.NormalizedKey, c.ExistingItemID, c.AttemptedItem, c.Source, c.Locator)
		}
	}
	if len(summary.Errors) > 0 {
		b.WriteString("Errors:\n")
		for _, msg := range summary.Errors {
			fmt.Fprintf(&b, "  %s\n", msg)
		}
	}
	if len(summary.Pending) > 0 {
		fmt.Fprintf(&b, "Pending matches: %d", len(summary.Pending))
		if summary.PendingTruncated {
			b.WriteString(" (truncated)")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Duration: %s\n", summary.Duration)

	_, err := io.WriteString(w, b.String())
	return err
}

// WritePendingReport renders the pending-match table to w in the requested
// format. The column set is fixed: source, row, raw_name, normalized_name,
// score, suggestion.
func WritePendingReport(w io.Writer, pending []models.PendingMatch, format OutputFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pending)

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(pendingHeader); err != nil {
			return err
		}
		for _, p := range pending {
			record := []string{
				p.Source.String(),
				p.Locator,
				p.RawName,
				p.NormalizedName,
				strconv.Itoa(p.BestScore),
				p.Suggestion,
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()

	case FormatConsole:
		if len(pending) == 0 {
			_, err := io.WriteString(w, "No pending matches.\n")
			return err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%-10s %-10s %-30s %-30s %5s  %s\n",
			"source", "row", "raw_name", "normalized_name", "score", "suggestion")
		for _, p := range pending {
			fmt.Fprintf(&b, "%-10s %-10s %-30s %-30s %5d  %s\n",
				p.Source, p.Locator, p.RawName, p.NormalizedName, p.BestScore, p.Suggestion)
		}
		_, err := io.WriteString(w, b.String())
		return err

	default:
		return apperrors.ConfigError(apperrors.CodeInvalidConfig, "output-format", format, nil)
	}
}

// SavePendingReport writes the pending-match report to a file.
func SavePendingReport(path string, pending []models.PendingMatch, format OutputFormat) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.FileError(apperrors.CodeDirectoryError, path, err)
	}
	defer f.Close()

	if err := WritePendingReport(f, pending, format); err != nil {
		return err
	}
	return f.Sync()
}
