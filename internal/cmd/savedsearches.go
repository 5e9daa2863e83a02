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
	savedSearchesName  string
	savedSearchesOwner string
	savedSearchesJSON  bool
)

var savedSearchesCmd = &cobra.Command{
	Use:   "saved-searches",
	Short: "List saved searches",
	Long: `List saved searches, sorted by name.

Examples:
  splunkmcp saved-searches
  splunkmcp saved-searches --name errors --owner admin
  splunkmcp saved-searches --json`,
	RunE: runSavedSearches,
}

func init() {
	rootCmd.AddCommand(savedSearchesCmd)
	savedSearchesCmd.Flags().StringVar(&savedSearchesName, "name", "", "Case-insensitive substring filter on name")
	savedSearchesCmd.Flags().StringVar(&savedSearchesOwner, "owner", "", "Restrict to searches owned by this user")
	savedSearchesCmd.Flags().BoolVar(&savedSearchesJSON, "json", false, "Output as JSON")
}

func runSavedSearches(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := buildClient(cfg, observability.ServiceLogger)
	if err != nil {
		return err
	}

	searches, err := client.ListSavedSearches(cmd.Context(), savedSearchesName, savedSearchesOwner)
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "cannot list saved searches", err)
	}

	if savedSearchesJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(searches)
	}

	if len(searches) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "No saved searches found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tOWNER\tAPP\tSCHEDULE\tDISABLED")
	for _, s := range searches {
		schedule := s.CronSchedule
		if schedule == "" {
			schedule = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n",
			s.Name, s.Owner, s.App, schedule, s.Disabled)
	}
	return w.Flush()
}
