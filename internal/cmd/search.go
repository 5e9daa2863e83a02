package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/splunkmcp/internal/observability"
	"github.com/3leaps/splunkmcp/pkg/output"
	"github.com/3leaps/splunkmcp/pkg/splunk"
)

var (
	searchEarliest string
	searchLatest   string
	searchMaxCount int
	searchTimeout  int
	searchOutput   string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run one search and emit results as JSONL",
	Long: `Run one search and stream results to stdout as JSONL records.

Each line is a typed envelope: result rows, then a summary (or an
error record on failure). Logs go to stderr so stdout stays clean for
piping.

Examples:
  splunkmcp search "index=main error" --max-count 500
  splunkmcp search "| tstats count by index" --earliest "-7d@d"
  splunkmcp search "index=main error" --output results.jsonl`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchEarliest, "earliest", "", "Earliest event time (default -24h@h)")
	searchCmd.Flags().StringVar(&searchLatest, "latest", "", "Latest event time (default now)")
	searchCmd.Flags().IntVar(&searchMaxCount, "max-count", 0, "Maximum events to return, 1-10000 (default 100)")
	searchCmd.Flags().IntVar(&searchTimeout, "timeout", 0, "Seconds to wait for completion, 1-3600 (default 60)")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "Write JSONL to file instead of stdout")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := buildClient(cfg, observability.ServiceLogger)
	if err != nil {
		return err
	}

	dest := os.Stdout
	if searchOutput != "" {
		f, createErr := os.Create(searchOutput)
		if createErr != nil {
			return exitError(foundry.ExitFileWriteError,
				fmt.Sprintf("cannot create output file %s", searchOutput), createErr)
		}
		defer func() { _ = f.Close() }()
		dest = f
	}

	invocationID := uuid.NewString()
	writer := output.NewJSONLWriter(dest, invocationID)
	defer func() { _ = writer.Close() }()

	ctx := cmd.Context()
	req := splunk.SearchRequest{
		Query:        strings.Join(args, " "),
		EarliestTime: searchEarliest,
		LatestTime:   searchLatest,
		MaxCount:     searchMaxCount,
		Timeout:      searchTimeout,
	}

	outcome, err := client.Search(ctx, req)
	if err != nil {
		var serr *splunk.SearchError
		if errors.As(err, &serr) {
			writeSearchError(ctx, writer, serr)
			return exitError(foundry.ExitExternalServiceUnavailable, "search failed", serr)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "search failed", err)
	}

	writer.SetSID(outcome.SID)
	for _, row := range outcome.Results {
		if werr := writer.WriteResult(ctx, &output.ResultRecord{Row: row}); werr != nil {
			return exitError(foundry.ExitFileWriteError, "cannot write result row", werr)
		}
	}
	if werr := writer.WriteSummary(ctx, &output.SummaryRecord{
		Query:       req.Query,
		ResultCount: outcome.ResultCount,
		Truncated:   outcome.Truncated,
		DurationS:   outcome.Duration.Seconds(),
	}); werr != nil {
		return exitError(foundry.ExitFileWriteError, "cannot write summary", werr)
	}

	observability.CLILogger.Info("search finished",
		zap.String("sid", outcome.SID),
		zap.Int("rows", outcome.ResultCount),
		zap.Bool("truncated", outcome.Truncated))
	return nil
}

// writeSearchError emits the failure as a JSONL record. Partial rows
// salvaged from a mid-pagination failure are written first so callers
// still get the data that arrived.
func writeSearchError(ctx context.Context, writer output.Writer, serr *splunk.SearchError) {
	if partial, ok := serr.Details["partial_results"].([]map[string]any); ok {
		for _, row := range partial {
			_ = writer.WriteResult(ctx, &output.ResultRecord{Row: row})
		}
	}
	_ = writer.WriteError(ctx, &output.ErrorRecord{
		Kind:    string(serr.Kind),
		Message: serr.Message,
		Details: serr.Details,
	})
}
