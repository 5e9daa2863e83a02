package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/3leaps/splunkmcp/internal/observability"
)

var (
	appsVisibleOnly bool
	appsJSON        bool
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List installed Splunk applications",
	Long: `List installed Splunk applications, sorted by name.

Examples:
  splunkmcp apps
  splunkmcp apps --visible-only
  splunkmcp apps --json`,
	RunE: runApps,
}

func init() {
	rootCmd.AddCommand(appsCmd)
	appsCmd.Flags().BoolVar(&appsVisibleOnly, "visible-only", false, "Drop apps flagged invisible in the UI")
	appsCmd.Flags().BoolVar(&appsJSON, "json", false, "Output as JSON")
}

func runApps(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := buildClient(cfg, observability.ServiceLogger)
	if err != nil {
		return err
	}

	apps, err := client.ListApps(cmd.Context(), appsVisibleOnly)
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "cannot list apps", err)
	}

	if appsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(apps)
	}

	if len(apps) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "No apps found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tLABEL\tVERSION\tDISABLED")
	for _, a := range apps {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%v\n",
			a.Name, a.Label, a.Version, a.Disabled)
	}
	return w.Flush()
}
