package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/contactkeeper/internal/server"
	"github.com/teemow/contactkeeper/internal/toolstore"
	"github.com/teemow/contactkeeper/internal/tools/contacts_tools"
	"github.com/teemow/contactkeeper/internal/tools/transfer_tools"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		yolo           bool
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server over stdio to provide
Google Contacts tools for AI assistants.

Safety Mode:
  By default, the server operates in read-only mode, providing only safe
  operations (search, get, birthdays, export). Use --yolo to enable
  write operations (create, update, delete, import).

Configuration:
  The host platform injects TOOLSTORE_* environment variables at
  activation: TOOLSTORE_JWT, TOOLSTORE_DEV_SLUG, TOOLSTORE_TOOL_SLUG,
  TOOLSTORE_USER_ID, TOOLSTORE_USER_SLUG, and optionally
  TOOLSTORE_OAUTH_TOKEN_ENDPOINT for automatic token refresh. Without a
  token endpoint, expired credentials require re-activation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(debugMode, yolo, metricsEnabled, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (create, update, delete, import). Default is read-only mode.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Expose Prometheus metrics on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(debugMode, yolo, metricsEnabled bool, metricsAddr string) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Stdout carries the MCP transport, so all logging goes to stderr.
	logger := newLogger(debugMode)
	slog.SetDefault(logger)

	// Load metrics config from environment if not set via flags
	if !metricsEnabled && os.Getenv("METRICS_ENABLED") == "true" {
		metricsEnabled = true
	}
	if addr := os.Getenv("METRICS_ADDR"); addr != "" && metricsAddr == server.DefaultMetricsAddr {
		metricsAddr = addr
	}

	cfg, err := toolstore.ConfigFromEnv()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("incomplete host configuration: %w", err)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", "error", err)
		}
	}()

	var metricsServer *server.MetricsServer
	if metricsEnabled {
		metricsServer = server.NewMetricsServer(metricsAddr, serverContext.Metrics())
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("error during metrics server shutdown", "error", err)
			}
		}()
	}

	mcpSrv := mcpserver.NewMCPServer("contactkeeper", version,
		mcpserver.WithToolCapabilities(true),
	)

	// readOnly is the inverse of yolo
	readOnly := !yolo
	if readOnly {
		logger.Info("starting server in read-only mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting server with write operations enabled")
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	return runStdioServer(mcpSrv)
}

func newLogger(debugMode bool) *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Contacts",
			register: func() error {
				return contacts_tools.RegisterContactsTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Transfer",
			register: func() error {
				return transfer_tools.RegisterTransferTools(mcpSrv, ctx, readOnly)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}
	return nil
}
