package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/tapevm/internal/cli"
	"github.com/aretw0/tapevm/internal/config"
	"github.com/aretw0/tapevm/pkg/adapters/file"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	logger    *slog.Logger
	closeLogs = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "tapevm",
	Short: "tapevm is a resumable tape machine",
	Long: `tapevm runs programs of the eight-instruction tape language.
Every stop is captured in an opaque token, so a program waiting for input
can be continued later, by another process or another server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-file") {
			loaded.Log.File, _ = cmd.Flags().GetString("log-file")
		}

		l, closer, err := cli.NewLogger(loaded.Log, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		cfg, logger, closeLogs = loaded, l, closer
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLogs()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")
	rootCmd.PersistentFlags().String("wallet-dir", "", "Directory holding session tokens (default from config)")
}

// buildRuntime wires an engine from the loaded configuration.
func buildRuntime(cmd *cobra.Command) (*cli.Runtime, error) {
	return cli.BuildRuntime(cmd.Context(), cfg, logger)
}

func getWallet(cmd *cobra.Command) *file.Wallet {
	dir, _ := cmd.Flags().GetString("wallet-dir")
	if dir == "" {
		dir = cfg.Wallet.Dir
	}
	return file.New(dir)
}
