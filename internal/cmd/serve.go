package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/splunkmcp/internal/observability"
	"github.com/3leaps/splunkmcp/internal/server"
	"github.com/3leaps/splunkmcp/internal/server/handlers"
	"github.com/3leaps/splunkmcp/internal/tools"
	"github.com/3leaps/splunkmcp/pkg/splunk"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Run the MCP server. Tools are served over stdio; stdout carries the
protocol, so all logging goes to stderr.

A sidecar HTTP server exposes /health and /version for orchestrators
when server.health_enabled is set.

Examples:
  splunkmcp serve
  splunkmcp serve --log-profile structured`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// signalHealthChecker reports liveness of the signal handling loop.
// It has no failure mode; registering it keeps the checks map non-empty
// so /health output is stable.
type signalHealthChecker struct{}

func (signalHealthChecker) CheckHealth(ctx context.Context) error {
	return nil
}

// splunkHealthChecker probes the remote instance through the client.
type splunkHealthChecker struct {
	client *splunk.Client
}

func (c splunkHealthChecker) CheckHealth(ctx context.Context) error {
	_, err := c.client.GetServerInfo(ctx)
	return err
}

// identityHealthChecker verifies the process identity is fully
// populated. A blank field means a broken build.
type identityHealthChecker struct {
	binaryName string
	envPrefix  string
	configName string
}

func (c identityHealthChecker) CheckHealth(ctx context.Context) error {
	if c.binaryName == "" {
		return fmt.Errorf("missing binary name")
	}
	if c.envPrefix == "" {
		return fmt.Errorf("missing env prefix")
	}
	if c.configName == "" {
		return fmt.Errorf("missing config name")
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := observability.ServiceLogger
	logger.Info("starting splunkmcp",
		zap.String("version", versionInfo.Version),
		zap.String("splunk_host", cfg.Splunk.Host),
		zap.Int("splunk_port", cfg.Splunk.Port))

	client, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = client.Connect(connectCtx)
	cancel()
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "cannot connect to splunk", err)
	}
	logger.Info("connected to splunk")

	srv := mcpserver.NewMCPServer(appIdentity.BinaryName, versionInfo.Version)
	registry := tools.NewRegistry(client, logger)
	registry.RegisterAll(srv)

	var healthSrv *server.Server
	if cfg.Server.HealthEnabled {
		manager := handlers.InitHealthManager(versionInfo.Version)
		manager.RegisterChecker("signals", signalHealthChecker{})
		manager.RegisterChecker("identity", identityHealthChecker{
			binaryName: appIdentity.BinaryName,
			envPrefix:  appIdentity.EnvPrefix,
			configName: appIdentity.ConfigName,
		})
		manager.RegisterChecker("splunk", splunkHealthChecker{client: client})

		healthSrv = server.New(cfg.Server.Host, cfg.Server.Port)
		go func() {
			logger.Info("health server listening", zap.String("addr", healthSrv.Addr()))
			if serveErr := healthSrv.Start(); serveErr != nil {
				logger.Error("health server failed", zap.Error(serveErr))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- mcpserver.ServeStdio(srv)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-errCh:
		if err != nil {
			logger.Error("stdio server failed", zap.Error(err))
		}
	}

	if healthSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if shutdownErr := healthSrv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("health server shutdown incomplete", zap.Error(shutdownErr))
		}
	}

	logger.Info("splunkmcp stopped")
	return err
}
