package cmd

import (
	"fmt"
	"strconv"

	"dolce-almacen/internal/catalog"
	"dolce-almacen/internal/importer"
	apperrors "dolce-almacen/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// aliasCmd represents the alias command group
var aliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Manage catalog name aliases",
}

// aliasReconcileCmd represents the alias reconcile command
var aliasReconcileCmd = &cobra.Command{
	Use:   "reconcile <variant> <item-id>",
	Short: "Bind a name variant to a catalog item",
	Long: `Reconcile records an alias so future imports resolve the given name
variant directly to the chosen catalog item.

Unlike alias auto-creation during import, this command repoints an alias
that already targets a different item. Use it to resolve pending matches
and alias conflicts surfaced by an import run.

Examples:
  almacen alias reconcile "harina pastelerra" 12`,
	Args: cobra.ExactArgs(2),
	RunE: runAliasReconcile,
}

func init() {
	rootCmd.AddCommand(aliasCmd)
	aliasCmd.AddCommand(aliasReconcileCmd)
}

func runAliasReconcile(cmd *cobra.Command, args []string) error {
	variant := args[0]
	itemID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return apperrors.ConfigError(apperrors.CodeInvalidConfig, "item-id", args[1], err).
			WithSuggestion("item-id must be the numeric catalog item id")
	}

	store, err := catalog.Open(viper.GetString("db"))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := importer.NewRunner(store).ReconcileAlias(cmd.Context(), variant, itemID); err != nil {
		return err
	}

	fmt.Printf("alias %q now resolves to item %d\n", variant, itemID)
	return nil
}
