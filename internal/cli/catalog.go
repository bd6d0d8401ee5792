package cli

import (
	"fmt"

	"github.com/ppiankov/redline/internal/catalog"
	"github.com/spf13/cobra"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the risk catalog and reference clause corpus",
	Long: `Lists the risk categories and reference clauses the analysis runs
against. Use --catalog and --templates to inspect custom files instead
of the built-in defaults; invalid files are reported the same way the
analyzer would reject them.

Example:
  redline catalog
  redline catalog --catalog my-risks.yaml --templates my-clauses.yaml`,
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVar(&catalogPath, "catalog", "", "risk catalog YAML (default: built-in)")
	catalogCmd.Flags().StringVar(&templatesPath, "templates", "", "reference clause corpus YAML (default: built-in)")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	categories, err := catalog.LoadRiskCatalog(catalogPath)
	if err != nil {
		return err
	}
	templates, err := catalog.LoadTemplates(templatesPath)
	if err != nil {
		return err
	}

	fmt.Printf("Risk categories (%d):\n", len(categories))
	for _, c := range categories {
		scope := "all clauses"
		if len(c.AppliesTo) > 0 {
			scope = fmt.Sprintf("%v", c.AppliesTo)
		}
		fmt.Printf("  %-30s weight %.2f, threshold %.2f, %d triggers, applies to %s\n",
			c.ID, c.Weight, c.Threshold, len(c.Triggers), scope)
	}

	fmt.Printf("\nReference clauses (%d):\n", len(templates))
	for _, t := range templates {
		fmt.Printf("  %-30s %s (%s)\n", t.ID, t.Title, t.Category)
	}

	fmt.Printf("\nCatalog fingerprint: %s\n", catalog.Fingerprint(categories, templates))
	return nil
}
