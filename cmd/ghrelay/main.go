package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghrelay/ghrelay/internal/config"
	"github.com/ghrelay/ghrelay/internal/logging"
	"github.com/ghrelay/ghrelay/internal/version"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ghrelay",
		Short:   "Relay Telegram files and URLs to a GitHub release",
		Version: version.Detailed(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// all good now, errors from here on are runtime errors
			cmd.SilenceUsage = true

			defer slog.Info("Bye!")
			return run(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("datadir", "d", config.DefaultDataDir, "data directory for the session, spool and logs")
	rootCmd.Flags().StringP("health-addr", "a", config.DefaultHealthAddr, "address of the health endpoint")
	rootCmd.Flags().StringP("log-level", "l", config.DefaultLogLevel, "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (json, yaml or toml)")

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func main() {
	// bootstrap logger until the data dir and level are known
	slog.SetDefault(logging.New(os.Stdout, nil, slog.LevelInfo))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Setup root context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)

	if configFilePath, _ := cmd.Flags().GetString("config"); configFilePath != "" {
		v.SetConfigFile(configFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config read '%s': %w", configFilePath, err)
		}
	}

	// Bind flags to viper
	if err := errors.Join(
		v.BindPFlag(config.KeyDataDir, cmd.Flags().Lookup("datadir")),
		v.BindPFlag(config.KeyHealthAddr, cmd.Flags().Lookup("health-addr")),
		v.BindPFlag(config.KeyLogLevel, cmd.Flags().Lookup("log-level")),
	); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	return config.FromViper(v), nil
}
