package cmd

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/splunkmcp/internal/config"
	"github.com/3leaps/splunkmcp/internal/observability"
	"github.com/3leaps/splunkmcp/pkg/splunk"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks on the configuration and the Splunk connection,
and suggest fixes for common issues.

Examples:
  splunkmcp doctor              # Full environment and connection check`,
	Run: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) {
	identity := GetAppIdentity()
	bannerName := "doctor"
	if identity != nil && identity.BinaryName != "" {
		bannerName = identity.BinaryName + " doctor"
	}
	observability.CLILogger.Info("=== " + bannerName + " ===")
	observability.CLILogger.Info("")
	observability.CLILogger.Info("Running diagnostic checks...")
	observability.CLILogger.Info("")

	allChecks := true
	checkNum := 1
	totalChecks := 5

	// Check 1: Go runtime
	goVersion := runtime.Version()
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking runtime... ✅ %s %s/%s", checkNum, totalChecks, goVersion, runtime.GOOS, runtime.GOARCH),
		zap.String("go_version", goVersion))
	checkNum++

	// Check 2: Configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking configuration... ❌ %v", checkNum, totalChecks, err))
		printConfigHelp()
		finishDoctor(bannerName, false)
		ExitWithCode(observability.CLILogger, foundry.ExitInvalidArgument, "configuration check failed", err)
		return
	}
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking configuration... ✅ %s://%s:%d", checkNum, totalChecks, cfg.Splunk.Scheme, cfg.Splunk.Host, cfg.Splunk.Port),
		zap.String("auth_mode", authMode(cfg)))
	checkNum++

	client, err := buildClient(cfg, observability.ServiceLogger)
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking client settings... ❌ %v", checkNum, totalChecks, err))
		finishDoctor(bannerName, false)
		ExitWithCode(observability.CLILogger, foundry.ExitInvalidArgument, "client settings invalid", err)
		return
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	// Check 3: Reachability and authentication
	if err := client.Connect(ctx); err != nil {
		var serr *splunk.SearchError
		label := "unreachable"
		if errors.As(err, &serr) && serr.Kind == splunk.KindAuth {
			label = "authentication rejected"
		}
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking connection... ❌ %s", checkNum, totalChecks, label),
			zap.Error(err))
		if label == "authentication rejected" {
			printAuthHelp()
		} else {
			printConnectionHelp(cfg)
		}
		finishDoctor(bannerName, false)
		ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "connection check failed", err)
		return
	}
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking connection... ✅ authenticated", checkNum, totalChecks))
	checkNum++

	// Check 4: Server info
	info, err := client.GetServerInfo(ctx)
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking server info... ❌ %v", checkNum, totalChecks, err))
		allChecks = false
	} else {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking server info... ✅ %s v%s (%s)", checkNum, totalChecks, info.ServerName, info.Version, info.LicenseState),
			zap.String("splunk_version", info.Version),
			zap.String("server_name", info.ServerName))
	}
	checkNum++

	// Check 5: Index visibility
	indexes, err := client.ListIndexes(ctx, "")
	if err != nil {
		observability.CLILogger.Warn(fmt.Sprintf("[%d/%d] Checking index visibility... ⚠️  %v", checkNum, totalChecks, err))
		allChecks = false
	} else if len(indexes) == 0 {
		observability.CLILogger.Warn(fmt.Sprintf("[%d/%d] Checking index visibility... ⚠️  credential sees no indexes", checkNum, totalChecks))
		allChecks = false
	} else {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking index visibility... ✅ %d indexes visible", checkNum, totalChecks, len(indexes)),
			zap.Int("index_count", len(indexes)))
	}

	finishDoctor(bannerName, allChecks)
}

func finishDoctor(bannerName string, allChecks bool) {
	observability.CLILogger.Info("")
	if allChecks {
		observability.CLILogger.Info(fmt.Sprintf("✅ All checks passed! Your %s setup is healthy.", bannerName))
	} else {
		observability.CLILogger.Warn("⚠️  Some checks failed. Review the output above for details.")
	}
	observability.CLILogger.Info("")
	observability.CLILogger.Info("=== End Diagnostics ===")
}

func authMode(cfg *config.Config) string {
	if cfg.Splunk.Token != "" {
		return "token"
	}
	return "session"
}

func printConfigHelp() {
	observability.CLILogger.Info("")
	observability.CLILogger.Info("To configure the Splunk connection:")
	observability.CLILogger.Info("  1. Set SPLUNK_HOST and SPLUNK_TOKEN environment variables, or")
	observability.CLILogger.Info("  2. Set SPLUNK_USERNAME and SPLUNK_PASSWORD instead of a token, or")
	observability.CLILogger.Info("  3. Put the same values in a .env file or pass --config <file>")
	observability.CLILogger.Info("")
}

func printAuthHelp() {
	observability.CLILogger.Info("")
	observability.CLILogger.Info("Authentication was rejected by the platform:")
	observability.CLILogger.Info("  - Verify the token has not expired (Settings > Tokens)")
	observability.CLILogger.Info("  - For username/password, verify the account is not locked")
	observability.CLILogger.Info("")
}

func printConnectionHelp(cfg *config.Config) {
	observability.CLILogger.Info("")
	observability.CLILogger.Info("The management endpoint could not be reached:")
	observability.CLILogger.Info(fmt.Sprintf("  - Verify %s:%d is the management port (usually 8089, not 8000)", cfg.Splunk.Host, cfg.Splunk.Port))
	observability.CLILogger.Info("  - Check firewall rules between this host and the platform")
	observability.CLILogger.Info("  - For self-signed certificates, set SPLUNK_VERIFY_SSL=false")
	observability.CLILogger.Info("")
}
