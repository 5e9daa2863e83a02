package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/3leaps/splunkmcp/internal/observability"
	"github.com/3leaps/splunkmcp/pkg/splunk"
)

var (
	indexesPattern string
	indexesJSON    bool
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "List indexes visible to the configured credential",
	Long: `List indexes visible to the configured credential, sorted by name.

Examples:
  splunkmcp indexes
  splunkmcp indexes --pattern '*security*'
  splunkmcp indexes --json`,
	RunE: runIndexes,
}

func init() {
	rootCmd.AddCommand(indexesCmd)
	indexesCmd.Flags().StringVar(&indexesPattern, "pattern", "", "Glob filter on index names")
	indexesCmd.Flags().BoolVar(&indexesJSON, "json", false, "Output as JSON")
}

func runIndexes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := buildClient(cfg, observability.ServiceLogger)
	if err != nil {
		return err
	}

	indexes, err := client.ListIndexes(cmd.Context(), indexesPattern)
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "cannot list indexes", err)
	}

	if indexesJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(indexes)
	}

	if len(indexes) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "No indexes found")
		return nil
	}

	return writeIndexTable(os.Stdout, indexes)
}

func writeIndexTable(out io.Writer, indexes []splunk.IndexInfo) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEVENTS\tSIZE_MB\tDISABLED")
	for _, idx := range indexes {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%.1f\t%v\n",
			idx.Name, idx.TotalEventCount, idx.CurrentDBSizeMB, idx.Disabled)
	}
	return w.Flush()
}
