package cmd

import (
	"io"
	"os"

	"dolce-almacen/cmd/almacen/config"
	"dolce-almacen/internal/catalog"
	"dolce-almacen/internal/importer"
	"dolce-almacen/internal/reporter"
	apperrors "dolce-almacen/pkg/errors"
	"dolce-almacen/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the import command
var (
	sourceDir          string
	sourcesFlag        []string
	fuzzyThreshold     int
	aliasThreshold     int
	createAliases      bool
	createMissingItems bool
	dryRun             bool
	maxPending         int
	outputFormat       string
	outputFile         string
	pendingFile        string
	pendingFormat      string
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the warehouse exports into the catalog",
	Long: `Import reads the warehouse spreadsheet exports from a source folder,
resolves every row against the item catalog and applies stock snapshots and
deduplicated ledger movements in a single transaction.

A dry run executes the complete pipeline, reports the full summary and then
rolls everything back, so its numbers match what a real run would do.

Examples:
  # Import all four documents
  almacen import --source-dir ./exports

  # Only the movement documents, with alias auto-creation
  almacen import --source-dir ./exports --sources inbound,outbound --create-aliases

  # Preview without touching the catalog, export unmatched names for triage
  almacen import --source-dir ./exports --dry-run --pending-file pending.csv

  # First load of a new warehouse
  almacen import --source-dir ./exports --create-missing-items`,

	PreRunE: validateImportFlags,
	RunE:    runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&sourceDir, "source-dir", "s", ".", "folder holding the warehouse exports")
	importCmd.Flags().StringSliceVar(&sourcesFlag, "sources", nil, "documents to import: stock, inbound, outbound, shrinkage (default all)")

	// Matching flags
	importCmd.Flags().IntVar(&fuzzyThreshold, "fuzzy-threshold", 90, "minimum fuzzy match score (0-100)")
	importCmd.Flags().IntVar(&aliasThreshold, "alias-threshold", 95, "minimum fuzzy score for alias auto-creation (0-100)")
	importCmd.Flags().BoolVar(&createAliases, "create-aliases", false, "record aliases for confident fuzzy matches")
	importCmd.Flags().BoolVar(&createMissingItems, "create-missing-items", false, "create catalog items for unmatched rows")

	// Run flags
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "execute the full run and roll everything back")
	importCmd.Flags().IntVar(&maxPending, "max-pending", 200, "cap on pending matches carried in the summary")

	// Output flags
	importCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "summary format: console, json")
	importCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "summary file path (default: stdout)")
	importCmd.Flags().StringVar(&pendingFile, "pending-file", "", "write unmatched names to this file for triage")
	importCmd.Flags().StringVar(&pendingFormat, "pending-format", "csv", "pending report format: console, json, csv")

	// Bind flags to viper
	viper.BindPFlag("source-dir", importCmd.Flags().Lookup("source-dir"))
	viper.BindPFlag("sources", importCmd.Flags().Lookup("sources"))
	viper.BindPFlag("fuzzy-threshold", importCmd.Flags().Lookup("fuzzy-threshold"))
	viper.BindPFlag("alias-threshold", importCmd.Flags().Lookup("alias-threshold"))
	viper.BindPFlag("create-aliases", importCmd.Flags().Lookup("create-aliases"))
	viper.BindPFlag("create-missing-items", importCmd.Flags().Lookup("create-missing-items"))
	viper.BindPFlag("dry-run", importCmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("max-pending", importCmd.Flags().Lookup("max-pending"))
	viper.BindPFlag("output-format", importCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", importCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("pending-file", importCmd.Flags().Lookup("pending-file"))
	viper.BindPFlag("pending-format", importCmd.Flags().Lookup("pending-format"))
}

func validateImportFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file and env)
	sourceDir = viper.GetString("source-dir")
	sourcesFlag = viper.GetStringSlice("sources")
	fuzzyThreshold = viper.GetInt("fuzzy-threshold")
	aliasThreshold = viper.GetInt("alias-threshold")
	createAliases = viper.GetBool("create-aliases")
	createMissingItems = viper.GetBool("create-missing-items")
	dryRun = viper.GetBool("dry-run")
	maxPending = viper.GetInt("max-pending")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	pendingFile = viper.GetString("pending-file")
	pendingFormat = viper.GetString("pending-format")

	if info, err := os.Stat(sourceDir); err != nil {
		return apperrors.FileError(apperrors.CodeDirectoryError, sourceDir, err)
	} else if !info.IsDir() {
		return apperrors.FileError(apperrors.CodeDirectoryError, sourceDir, nil).
			WithSuggestion("source-dir must be the folder holding the exports, not a file")
	}

	if _, err := config.ParseOutputFormat(outputFormat); err != nil {
		return err
	}
	if _, err := config.ParseOutputFormat(pendingFormat); err != nil {
		return err
	}
	if viper.GetString("db") == "" {
		return apperrors.ConfigError(apperrors.CodeMissingConfig, "db", nil, nil)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logger.GetGlobalLogger().WithComponent("cli")

	req, err := config.BuildImportRequest(config.ImportOptions{
		SourceDir:          sourceDir,
		Sources:            sourcesFlag,
		FuzzyThreshold:     fuzzyThreshold,
		AliasThreshold:     aliasThreshold,
		CreateAliases:      createAliases,
		CreateMissingItems: createMissingItems,
		DryRun:             dryRun,
		MaxPending:         maxPending,
	})
	if err != nil {
		return err
	}

	store, err := catalog.Open(viper.GetString("db"))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := importer.NewRunner(store).Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	format, err := config.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return apperrors.FileError(apperrors.CodeDirectoryError, outputFile, err)
		}
		defer f.Close()
		out = f
	}
	if err := reporter.WriteSummary(out, summary, format); err != nil {
		return err
	}

	if pendingFile != "" && len(summary.Pending) > 0 {
		pf, err := config.ParseOutputFormat(pendingFormat)
		if err != nil {
			return err
		}
		if err := reporter.SavePendingReport(pendingFile, summary.Pending, pf); err != nil {
			return err
		}
		log.WithFields(logger.Fields{
			"file":    pendingFile,
			"pending": len(summary.Pending),
		}).Info("pending report written")
	}
	return nil
}
