// Package cmd wires the splunkmcp command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/splunkmcp/internal/config"
	"github.com/3leaps/splunkmcp/internal/observability"
	"github.com/3leaps/splunkmcp/pkg/splunk"
)

// versionInfo is populated by main via SetVersionInfo from ldflags.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata before Execute runs.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// AppIdentity names the binary for banners, env prefixes, and config
// file discovery.
type AppIdentity struct {
	BinaryName string
	EnvPrefix  string
	ConfigName string
}

var appIdentity = &AppIdentity{
	BinaryName: "splunkmcp",
	EnvPrefix:  "SPLUNKMCP",
	ConfigName: "splunkmcp",
}

// GetAppIdentity returns the process identity, or nil before init.
func GetAppIdentity() *AppIdentity {
	return appIdentity
}

var (
	cfgFile    string
	logLevel   string
	logProfile string
)

var rootCmd = &cobra.Command{
	Use:   "splunkmcp",
	Short: "Splunk search tools for MCP assistants",
	Long: `splunkmcp exposes Splunk search, index, and metadata operations as
MCP tools over stdio, and as one-shot CLI commands for scripting.

Connection settings come from SPLUNK_* environment variables, a .env
file, or a YAML config file:

  SPLUNK_HOST=splunk.example.com
  SPLUNK_TOKEN=...            # or SPLUNK_USERNAME + SPLUNK_PASSWORD

Examples:
  splunkmcp serve                          # stdio MCP server
  splunkmcp search "index=main error"      # one-shot search, JSONL out
  splunkmcp indexes --pattern '*sec*'
  splunkmcp doctor`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return observability.Init(logLevel, logProfile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logProfile, "log-profile", observability.ProfileCLI, "Log output profile (cli, structured)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s (commit %s, built %s)\n",
			appIdentity.BinaryName, versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
	},
}

// Execute runs the command tree. Errors have already been logged by
// the failing command; the exit code is derived here.
func Execute() {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		observability.CLILogger.Error(err.Error())
		os.Exit(1)
	}
}

// osExit is swapped out by tests that exercise hard-exit paths.
var osExit = os.Exit

// ExitWithCode logs the failure and terminates with a foundry exit
// code. Used where a partial run must not look like success.
func ExitWithCode(logger *zap.Logger, code int, message string, err error) {
	if err != nil {
		logger.Error(message, zap.Error(err))
	} else {
		logger.Error(message)
	}
	observability.Sync()
	osExit(code)
}

// exitError wraps an error so the message carries the intended exit
// code for callers that inspect it.
func exitError(code int, message string, err error) error {
	return fmt.Errorf("%s: %w (exit code %d)", message, err, code)
}

// loadConfig resolves configuration for commands that talk to Splunk.
// The --log-level and --log-profile flags override file and env values
// so ad-hoc debugging does not require editing config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "configuration invalid", err)
	}
	if rootCmd.PersistentFlags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if rootCmd.PersistentFlags().Changed("log-profile") {
		cfg.Logging.Profile = logProfile
	}
	if err := observability.Init(cfg.Logging.Level, cfg.Logging.Profile); err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "logging configuration invalid", err)
	}
	return cfg, nil
}

// buildClient constructs a Splunk client from loaded configuration.
func buildClient(cfg *config.Config, logger *zap.Logger) (*splunk.Client, error) {
	policy := splunk.PollPolicy{
		InitialInterval: cfg.Search.PollInitialInterval,
		MaxInterval:     cfg.Search.PollMaxInterval,
		Multiplier:      cfg.Search.PollMultiplier,
		MaxRetries:      cfg.Search.MaxRetries,
	}
	client, err := splunk.New(splunk.Config{
		Host:                 cfg.Splunk.Host,
		Port:                 cfg.Splunk.Port,
		Scheme:               cfg.Splunk.Scheme,
		Token:                cfg.Splunk.Token,
		Username:             cfg.Splunk.Username,
		Password:             cfg.Splunk.Password,
		VerifySSL:            cfg.Splunk.VerifySSL,
		RequestTimeout:       cfg.Splunk.Timeout,
		MaxRequestsPerSecond: cfg.Search.MaxRequestsPerSecond,
	},
		splunk.WithLogger(logger),
		splunk.WithPollPolicy(policy),
		splunk.WithPageSize(cfg.Search.PageSize),
	)
	if err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "splunk client configuration invalid", err)
	}
	return client, nil
}
