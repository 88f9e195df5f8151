package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/finsight-ai/finsight/internal/config"
	"github.com/finsight-ai/finsight/internal/llm"
	"github.com/finsight-ai/finsight/internal/pipeline"
	"github.com/finsight-ai/finsight/internal/server"
	"github.com/finsight-ai/finsight/internal/session"
)

// Version is the CLI version string.
const Version = "0.1.0"

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "finsight",
		Short: "finsight - conversational financial data visualization",
		Long: `finsight is a chat assistant for financial data visualization.
Ask for stock data as a table, chart, or list, or ask general financial
questions; the assistant clarifies what it needs and keeps per-session history.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}
			return cfg.EnsureDirectories()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newChatCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(cfg))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	return rootCmd
}

// newServeCmd creates the serve command.
func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the finsight HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			portOverride := 0
			if cmd.Flags().Changed("port") {
				portOverride, _ = cmd.Flags().GetInt("port")
			}
			return runServe(cfg, portOverride)
		},
	}

	cmd.Flags().Int("port", 0, "Listen port (default from config)")
	return cmd
}

func runServe(cfg *config.Config, portOverride int) error {
	log, level, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr, err := newConfigManager(cfg, log.Named("config"))
	if err != nil {
		return err
	}

	runCfg := mgr.Get()
	if portOverride != 0 {
		runCfg.ServerPort = portOverride
	}

	// Edits to the config file flip the log level without a restart;
	// everything else applies on the next start.
	if err := mgr.Watch(ctx, func(c config.Config) {
		applyLogLevel(level, c.Debug)
		log.Info("configuration reloaded", zap.Bool("debug", c.Debug))
	}); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	gen, err := llm.NewChatGenerator(ctx, &runCfg, log.Named("llm"))
	if err != nil {
		return fmt.Errorf("init generator: %w", err)
	}

	store, err := openStore(&runCfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	pipe := pipeline.New(gen, log.Named("pipeline"))
	srv := server.NewServer(runCfg.ServerPort, store, pipe, log.Named("server"))
	return srv.Start(ctx)
}

// newConfigManager owns the config file under the data dir. The
// env-resolved config seeds the file on first run; after that the stored
// file is authoritative and hot reload picks up on-disk edits.
func newConfigManager(cfg *config.Config, log *zap.Logger) (*config.Manager, error) {
	return config.NewManager(
		config.WithConfigPath(filepath.Join(cfg.DataDir, "config.json")),
		config.WithInitialConfig(cfg),
		config.WithLogger(log),
	)
}

func applyLogLevel(level zap.AtomicLevel, debug bool) {
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

func openStore(cfg *config.Config, log *zap.Logger) (session.Store, error) {
	switch cfg.SessionBackend {
	case config.StoreSQLite:
		store, err := session.OpenSQLiteStore(cfg.SessionsDB)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		store, err := session.NewFileStore(cfg.SessionsFile, log.Named("store"))
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil
	}
}

// newLogger also returns the atomic level so hot reload can adjust
// verbosity on a live process.
func newLogger(debug bool) (*zap.Logger, zap.AtomicLevel, error) {
	zcfg := zap.NewProductionConfig()
	if debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	log, err := zcfg.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	return log, zcfg.Level, nil
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("finsight %s\n", Version)
		},
	}
}

// newConfigCmd creates the config command.
func newConfigCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the stored configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager(cfg, zap.NewNop())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(mgr.Get(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <json>",
		Short: "Replace the stored configuration from a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager(cfg, zap.NewNop())
			if err != nil {
				return err
			}
			if err := mgr.UpdateFromJSON(args[0]); err != nil {
				return err
			}
			fmt.Printf("configuration written to %s\n", mgr.Path())
			return nil
		},
	})

	return cmd
}
