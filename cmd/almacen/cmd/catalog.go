package cmd

import (
	"fmt"

	"dolce-almacen/internal/catalog"
	"dolce-almacen/internal/importer"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// catalogCmd represents the catalog command group
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the item catalog",
}

// catalogSeedCmd represents the catalog seed command
var catalogSeedCmd = &cobra.Command{
	Use:   "seed <inventario.xlsx>",
	Short: "Seed the catalog from a stock export",
	Long: `Seed creates a catalog item for every row of a stock-layout workbook
that does not already resolve to one. Existing items and aliases are left
untouched, so seeding is safe to repeat.

Examples:
  almacen catalog seed ./exports/inventario.xlsx --db almacen.db`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogSeed,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogSeedCmd)
}

func runCatalogSeed(cmd *cobra.Command, args []string) error {
	store, err := catalog.Open(viper.GetString("db"))
	if err != nil {
		return err
	}
	defer store.Close()

	created, err := importer.NewRunner(store).SeedCatalog(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("created %d catalog items\n", created)
	return nil
}
