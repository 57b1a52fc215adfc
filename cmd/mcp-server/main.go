package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mcp-file-gateway/internal/server"
	"mcp-file-gateway/pkg/config"
	"mcp-file-gateway/pkg/logging"
	"mcp-file-gateway/pkg/sandbox"
	"mcp-file-gateway/pkg/tools"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// flag name -> configuration key
var flagKeys = map[string]string{
	"log-level":      "log_level",
	"transport":      "transport",
	"addr":           "http.addr",
	"public-dir":     "http.public_dir",
	"allowed-dir":    "allowed_dirs",
	"max-read-bytes": "max_read_bytes",
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "MCP gateway exposing sandboxed file-system tools",
		Long: `mcp-server speaks the Model Context Protocol over stdio or HTTP and exposes
a fixed set of file-system and utility tools. Every path argument is confined
to the configured allowed directories.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to the JSON config file (default ./"+config.DefaultConfigFile+" when present)")
	flags.String("log-level", config.DefaultLogLevel, "Logging level (DEBUG, INFO, WARN, ERROR)")
	flags.String("transport", config.TransportStdio, "Transport to serve (stdio or http)")
	flags.String("addr", config.DefaultHTTPAddr, "Listen address for the http transport")
	flags.String("public-dir", config.DefaultPublicDir, "Directory holding index.html for the http transport")
	flags.StringSlice("allowed-dir", nil, "Directory the tools may access (repeatable)")
	flags.Int64("max-read-bytes", config.DefaultMaxReadBytes, "Largest file read_file and diff_files will load")

	rootCmd.AddCommand(newVersionCmd(), newToolsCmd(&configPath))
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (MCP %s)\n",
				config.ServerName, config.ServerVersion, config.ProtocolVersion)
			return err
		},
	}
}

func newToolsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the server exposes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *configPath)
			if err != nil {
				return err
			}

			lm := logging.NewLoggingManagerWithWriter(io.Discard)
			dispatcher, _, err := buildDispatcher(cfg, lm, afero.NewOsFs())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, def := range dispatcher.Registry().List() {
				if _, err := fmt.Fprintf(out, "%-12s %s\n", def.Name, def.Description); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// loadConfig reads the config file and environment, with any flags the
// user set taking precedence
func loadConfig(cmd *cobra.Command, configPath string) (*config.Config, error) {
	loader := config.NewLoader(configPath)
	for name, key := range flagKeys {
		if err := loader.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, err
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration load failed: %w", err)
	}
	return cfg, nil
}

// buildDispatcher assembles the allow-list, the builtin tools and the registry
func buildDispatcher(cfg *config.Config, lm *logging.LoggingManager, fs afero.Fs) (*tools.Dispatcher, *sandbox.AllowedRoots, error) {
	roots, err := sandbox.NewAllowedRoots(cfg.AllowedDirs)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid allowed directories: %w", err)
	}

	builtins := tools.BuiltinTools(sandbox.New(roots), fs, tools.Options{MaxReadBytes: cfg.MaxReadBytes})
	registry, err := tools.NewRegistry(lm.GetLogger("registry"), builtins...)
	if err != nil {
		return nil, nil, err
	}

	return tools.NewDispatcher(registry, lm.GetLogger("dispatcher")), roots, nil
}

// run serves the configured transport until its input ends or ctx is cancelled
func run(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	lm := logging.NewLoggingManagerWithWriter(stderr)
	lm.SetLogLevel(cfg.LogLevel)
	lm.SetGlobalContext("service", config.ServerName)
	lm.SetGlobalContext("version", config.ServerVersion)
	logger := lm.GetLogger("main")

	fs := afero.NewOsFs()
	dispatcher, roots, err := buildDispatcher(cfg, lm, fs)
	if err != nil {
		lm.LogError("main", err, "Failed to initialize tools", map[string]interface{}{
			"allowed_dirs": cfg.AllowedDirs,
		})
		return err
	}

	mcpServer := server.NewMCPServer(dispatcher, roots, lm)
	if err := mcpServer.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := mcpServer.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during shutdown")
		}
	}()

	logger.WithContext("transport", cfg.Transport).
		WithContext("allowed_dirs", roots.String()).
		Info("MCP file gateway started")

	switch cfg.Transport {
	case config.TransportHTTP:
		err = server.NewHTTPTransport(mcpServer, cfg.HTTP.PublicDir, fs).ListenAndServe(ctx, cfg.HTTP.Addr)
	default:
		err = mcpServer.ServeStdio(ctx, stdin, stdout)
	}

	if errors.Is(err, context.Canceled) {
		logger.Info("Received shutdown signal, gracefully shutting down")
		return nil
	}
	return err
}
